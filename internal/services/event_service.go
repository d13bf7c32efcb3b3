package services

import (
	"context"
	"errors"
	"io"

	"github.com/eventboard/backend/internal/apperrors"
	"github.com/eventboard/backend/internal/metrics"
	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/internal/repositories"
	"github.com/eventboard/backend/internal/storage"
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// EventRepository is the interface that wraps methods for events collection data access
type EventRepository interface {
	// Method Create inserts a new event and assigns its ID and timestamps.
	Create(ctx context.Context, event *models.Event) error
	// Method GetByID retrieves an event by ID.
	//
	// If no event has this ID, repositories.ErrNotFound is returned together with "nil" value.
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	// Method List retrieves events matching the filter ordered by "order" and then creation time, both descending.
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, error)
	// Method Update writes all mutable fields of the event.
	//
	// Please reference GetByID method for more information about error values.
	Update(ctx context.Context, event *models.Event) error
	// Method ToggleActive atomically flips "isActive" and returns the updated event.
	//
	// Please reference GetByID method for more information about error values.
	ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	// Method Delete removes an event by ID.
	//
	// Please reference GetByID method for more information about error values.
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AssetStore is the interface that wraps methods for image asset storage.
//
// Delete must treat a missing key as success.
type AssetStore interface {
	Upload(ctx context.Context, r io.Reader, meta storage.UploadMetadata) (*storage.Asset, error)
	Delete(ctx context.Context, key string) error
}

// ImageUpload is an image file received with a create or update request
type ImageUpload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// Orphan reasons reported to metrics
const (
	orphanCreateRollback = "create_rollback"
	orphanUpdateRollback = "update_rollback"
	orphanReplaced       = "replaced"
)

type eventService struct {
	eventRepo EventRepository
	assets    AssetStore
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewEventService creates a new event service
func NewEventService(eventRepo EventRepository, assets AssetStore, logger *zap.Logger) *eventService {
	return &eventService{
		eventRepo: eventRepo,
		assets:    assets,
		validate:  newValidator(),
		logger:    logger,
	}
}

// List returns events matching the query
//
// Category "all" or empty disables the category filter.
// Featured filters only when supplied, and only "true" means featured.
// Only active events are returned unless IsActive is exactly "false".
func (s *eventService) List(ctx context.Context, query models.EventQuery) ([]models.Event, error) {
	filter := models.EventFilter{IsActive: query.IsActive != "false"}
	if query.Category != "" && query.Category != models.CategoryAll {
		filter.Category = query.Category
	}
	if query.Featured != "" {
		featured := query.Featured == "true"
		filter.Featured = &featured
	}

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list events", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to fetch events", err)
	}
	return events, nil
}

// Get returns a single event
func (s *eventService) Get(ctx context.Context, id string) (*models.Event, error) {
	return s.getEvent(ctx, id)
}

// Create uploads the image and stores a new event referencing it
//
// If the event cannot be stored, the uploaded image is deleted again before the error is returned.
func (s *eventService) Create(ctx context.Context, req *models.CreateEventRequest, image *ImageUpload) (*models.Event, error) {
	if image == nil {
		return nil, apperrors.Validation("Please upload an image")
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	asset, err := s.upload(ctx, image)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Date:        req.Date,
		Featured:    req.Featured,
		Order:       req.Order,
		IsActive:    isActive,
		Image:       models.Image{URL: asset.URL, PublicID: asset.Key},
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.logger.Error("failed to create event", zap.Error(err))
		s.discardAsset(ctx, asset.Key, orphanCreateRollback)
		return nil, apperrors.Unexpected("Failed to create event", err)
	}

	s.logger.Info("event created", zap.String("event_id", event.ID.Hex()), zap.String("image_key", asset.Key))
	return event, nil
}

// Update applies a partial update and optionally replaces the image
//
// A new image is uploaded before the record is written. The old image is deleted
// only after the write succeeds; if the write fails the new image is deleted instead.
func (s *eventService) Update(ctx context.Context, id string, req *models.UpdateEventRequest, image *ImageUpload) (*models.Event, error) {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	applyUpdate(event, req)

	oldKey := event.Image.PublicID
	var newKey string
	if image != nil {
		asset, err := s.upload(ctx, image)
		if err != nil {
			return nil, err
		}
		newKey = asset.Key
		event.Image = models.Image{URL: asset.URL, PublicID: asset.Key}
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		if newKey != "" {
			s.discardAsset(ctx, newKey, orphanUpdateRollback)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		s.logger.Error("failed to update event", zap.Error(err))
		return nil, apperrors.Unexpected("Failed to update event", err)
	}

	if newKey != "" && oldKey != "" && oldKey != newKey {
		s.discardAsset(ctx, oldKey, orphanReplaced)
	}

	return event, nil
}

// Delete removes the event's image and then the event
//
// A failed image delete aborts the operation, leaving the event intact.
func (s *eventService) Delete(ctx context.Context, id string) error {
	event, err := s.getEvent(ctx, id)
	if err != nil {
		return err
	}

	if key := event.Image.PublicID; key != "" {
		if err := s.assets.Delete(ctx, key); err != nil {
			metrics.AssetOperations.WithLabelValues("delete", metrics.OutcomeFailure).Inc()
			s.logger.Error("failed to delete event image",
				zap.String("event_id", event.ID.Hex()),
				zap.String("image_key", key),
				zap.Error(err),
			)
			return apperrors.Storage("Failed to delete event", err)
		}
		metrics.AssetOperations.WithLabelValues("delete", metrics.OutcomeSuccess).Inc()
	}

	if err := s.eventRepo.Delete(ctx, event.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound("Event not found")
		}
		s.logger.Error("failed to delete event", zap.String("event_id", event.ID.Hex()), zap.Error(err))
		return apperrors.Unexpected("Failed to delete event", err)
	}

	s.logger.Info("event deleted", zap.String("event_id", event.ID.Hex()))
	return nil
}

// ToggleActive flips the event's active flag
func (s *eventService) ToggleActive(ctx context.Context, id string) (*models.Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("Event not found")
	}

	event, err := s.eventRepo.ToggleActive(ctx, objectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		s.logger.Error("failed to toggle event", zap.String("event_id", id), zap.Error(err))
		return nil, apperrors.Unexpected("Failed to toggle event status", err)
	}
	return event, nil
}

// getEvent parses id and loads the event, mapping a bad or unknown id to NotFoundError
func (s *eventService) getEvent(ctx context.Context, id string) (*models.Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NotFound("Event not found")
	}

	event, err := s.eventRepo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound("Event not found")
		}
		s.logger.Error("failed to get event", zap.String("event_id", id), zap.Error(err))
		return nil, apperrors.Unexpected("Failed to fetch event", err)
	}
	return event, nil
}

// upload stores the image, reporting rejected images as ValidationError
func (s *eventService) upload(ctx context.Context, image *ImageUpload) (*storage.Asset, error) {
	asset, err := s.assets.Upload(ctx, image.Reader, storage.UploadMetadata{
		Filename:    image.Filename,
		ContentType: image.ContentType,
	})
	if err != nil {
		if errors.Is(err, storage.ErrInvalidImage) {
			return nil, apperrors.Validation("Please upload a valid image (jpeg, png, gif or webp)")
		}
		metrics.AssetOperations.WithLabelValues("upload", metrics.OutcomeFailure).Inc()
		s.logger.Error("failed to upload image", zap.String("filename", image.Filename), zap.Error(err))
		return nil, apperrors.Storage("Failed to upload image", err)
	}
	metrics.AssetOperations.WithLabelValues("upload", metrics.OutcomeSuccess).Inc()
	return asset, nil
}

// discardAsset deletes an asset no record references anymore.
// Failures are logged and counted, never returned, so they cannot mask the caller's result.
func (s *eventService) discardAsset(ctx context.Context, key, reason string) {
	// The cleanup must run even if the request was cancelled
	ctx = context.WithoutCancel(ctx)
	if err := s.assets.Delete(ctx, key); err != nil {
		metrics.AssetOperations.WithLabelValues("delete", metrics.OutcomeFailure).Inc()
		metrics.OrphanedAssets.WithLabelValues(reason).Inc()
		s.logger.Error("failed to delete unreferenced image",
			zap.String("image_key", key),
			zap.String("reason", reason),
			zap.Error(err),
		)
		return
	}
	metrics.AssetOperations.WithLabelValues("delete", metrics.OutcomeSuccess).Inc()
}

// applyUpdate copies the supplied fields of req onto event
func applyUpdate(event *models.Event, req *models.UpdateEventRequest) {
	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Featured != nil {
		event.Featured = *req.Featured
	}
	if req.Order != nil {
		event.Order = *req.Order
	}
	if req.IsActive != nil {
		event.IsActive = *req.IsActive
	}
}
