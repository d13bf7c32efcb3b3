package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eventboard/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const eventsCollection = "events"

type eventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *mongo.Database) *eventRepository {
	return &eventRepository{
		collection: db.Collection(eventsCollection),
	}
}

// EnsureIndexes creates the index backing the default listing query
func (r *eventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "isActive", Value: 1},
			{Key: "order", Value: -1},
			{Key: "createdAt", Value: -1},
		},
		Options: options.Index().SetName("active_order_created"),
	})
	if err != nil {
		return fmt.Errorf("failed to create event indexes: %w", err)
	}
	return nil
}

// Create inserts a new event and sets its ID and timestamps
func (r *eventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	event.ID = primitive.NewObjectID()
	event.CreatedAt = now
	event.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		event.ID = primitive.NilObjectID
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// GetByID retrieves an event by ID
func (r *eventRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find event: %w", err)
	}
	return &event, nil
}

// List retrieves events matching filter, ordered by order desc then createdAt desc
func (r *eventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, error) {
	opts := options.Find().SetSort(listSort)

	cursor, err := r.collection.Find(ctx, listQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer cursor.Close(ctx)

	events := make([]models.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("failed to decode events: %w", err)
	}
	return events, nil
}

var listSort = bson.D{
	{Key: "order", Value: -1},
	{Key: "createdAt", Value: -1},
}

// listQuery builds the find filter for List
func listQuery(filter models.EventFilter) bson.M {
	query := bson.M{"isActive": filter.IsActive}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}
	return query
}

// Update writes every mutable field of event and refreshes UpdatedAt
func (r *eventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": event.ID},
		bson.M{"$set": bson.M{
			"title":       event.Title,
			"description": event.Description,
			"category":    event.Category,
			"date":        event.Date,
			"featured":    event.Featured,
			"order":       event.Order,
			"isActive":    event.IsActive,
			"image":       event.Image,
			"updatedAt":   event.UpdatedAt,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleActive flips isActive in a single atomic update and returns the updated event
func (r *eventRepository) ToggleActive(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "isActive", Value: bson.D{{Key: "$not", Value: bson.A{"$isActive"}}}},
			{Key: "updatedAt", Value: "$$NOW"},
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var event models.Event
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&event); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to toggle event: %w", err)
	}
	return &event, nil
}

// Delete removes an event by ID
func (r *eventRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
