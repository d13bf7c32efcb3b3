package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/internal/services"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxMultipartMemory is the part of a multipart body kept in memory; the rest spills to temp files
const maxMultipartMemory = 8 << 20

// imageField is the multipart field carrying the event image
const imageField = "image"

// EventService is the interface that wraps methods for events business logic.
type EventService interface {
	// Method List retrieves events matching the raw query filters.
	//
	// Please reference models.EventQuery for the filter semantics.
	List(ctx context.Context, query models.EventQuery) ([]models.Event, error)
	// Method Get retrieves an event by its ID.
	//
	// If the ID is malformed or unknown, a not found error is returned together with "nil" value.
	Get(ctx context.Context, id string) (*models.Event, error)
	// Method Create uploads the image and stores a new event.
	//
	// "image" parameter is required; a nil value results in a validation error and nothing is stored.
	Create(ctx context.Context, req *models.CreateEventRequest, image *services.ImageUpload) (*models.Event, error)
	// Method Update applies the supplied fields and replaces the image when "image" is not nil.
	//
	// Please reference Get method for more information about error values.
	Update(ctx context.Context, id string, req *models.UpdateEventRequest, image *services.ImageUpload) (*models.Event, error)
	// Method Delete removes the event and its image.
	//
	// Please reference Get method for more information about error values.
	Delete(ctx context.Context, id string) error
	// Method ToggleActive flips the event's active flag and returns the updated event.
	//
	// Please reference Get method for more information about error values.
	ToggleActive(ctx context.Context, id string) (*models.Event, error)
}

// EventHandler handles HTTP requests for events
type EventHandler struct {
	BaseHandler
	eventService EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService EventService, base BaseHandler) *EventHandler {
	return &EventHandler{
		BaseHandler:  base,
		eventService: eventService,
	}
}

// RegisterRoutes registers all event handler routes
// Note: This assumes the router is already scoped to /api
func (h *EventHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
			r.Patch("/{id}/toggle-active", h.ToggleActive)
		})
	})
}

// List handles GET /events
// @Summary List events
// @Description List events ordered by "order" and then creation time, newest first. Only active events are returned unless isActive=false.
// @Tags events
// @Produce json
// @Param category query string false "Category, \"all\" disables the filter"
// @Param featured query string false "Featured flag (true/false)"
// @Param isActive query string false "Set to false to list inactive events"
// @Success 200 {object} Response{data=[]models.Event}
// @Failure 500 {object} Response
// @Router /events [get]
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	events, err := h.eventService.List(r.Context(), models.EventQuery{
		Category: query.Get("category"),
		Featured: query.Get("featured"),
		IsActive: query.Get("isActive"),
	})
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}
	if events == nil {
		events = []models.Event{}
	}

	count := len(events)
	h.RespondJSON(w, http.StatusOK, Response{Success: true, Count: &count, Data: events})
}

// Get handles GET /events/{id}
// @Summary Get event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} Response{data=models.Event}
// @Failure 404 {object} Response "Event not found"
// @Router /events/{id} [get]
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, event, "")
}

// Create handles POST /events
// @Summary Create event
// @Description Create an event from multipart form fields and an image file.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param title formData string true "Title"
// @Param description formData string true "Description"
// @Param category formData string true "Category"
// @Param date formData string true "Date (RFC3339 or YYYY-MM-DD)"
// @Param featured formData boolean false "Featured flag, default false"
// @Param order formData integer false "Display order, default 0"
// @Param isActive formData boolean false "Active flag, default true"
// @Param image formData file true "Event image (jpeg, png, gif or webp)"
// @Success 201 {object} Response{data=models.Event}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 413 {object} Response
// @Failure 500 {object} Response
// @Router /events [post]
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	defer removeMultipartFiles(r)

	fields, err := parseEventFields(r.PostForm)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, ok := h.formImage(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	event, err := h.eventService.Create(r.Context(), createRequest(fields), image.upload())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusCreated, event, "Event created successfully")
}

// Update handles PUT /events/{id}
// @Summary Update event
// @Description Update the supplied fields; a new image replaces the current one.
// @Tags events
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param category formData string false "Category"
// @Param date formData string false "Date (RFC3339 or YYYY-MM-DD)"
// @Param featured formData boolean false "Featured flag"
// @Param order formData integer false "Display order"
// @Param isActive formData boolean false "Active flag"
// @Param image formData file false "Replacement image"
// @Success 200 {object} Response{data=models.Event}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /events/{id} [put]
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !h.parseForm(w, r) {
		return
	}
	defer removeMultipartFiles(r)

	fields, err := parseEventFields(r.PostForm)
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	image, ok := h.formImage(w, r)
	if !ok {
		return
	}
	if image != nil {
		defer image.close()
	}

	event, err := h.eventService.Update(r.Context(), chi.URLParam(r, "id"), fields, image.upload())
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, event, "Event updated successfully")
}

// Delete handles DELETE /events/{id}
// @Summary Delete event
// @Description Delete the event image and then the event.
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 500 {object} Response
// @Router /events/{id} [delete]
func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.eventService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	h.RespondSuccess(w, http.StatusOK, nil, "Event deleted successfully")
}

// ToggleActive handles PATCH /events/{id}/toggle-active
// @Summary Toggle event status
// @Tags events
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Event ID"
// @Success 200 {object} Response{data=models.Event}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /events/{id}/toggle-active [patch]
func (h *EventHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	event, err := h.eventService.ToggleActive(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.RespondServiceError(w, r, err)
		return
	}

	message := "Event deactivated successfully"
	if event.IsActive {
		message = "Event activated successfully"
	}
	h.RespondSuccess(w, http.StatusOK, event, message)
}

// parseForm parses a multipart or urlencoded body, writing the error response on failure
func (h *EventHandler) parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseMultipartForm(maxMultipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.RespondError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	h.Logger.Debug("failed to parse form", zap.Error(err))
	h.RespondError(w, http.StatusBadRequest, "Invalid form data")
	return false
}

// formFile is an opened image part of a multipart form
type formFile struct {
	image  *services.ImageUpload
	closer interface{ Close() error }
}

func (f *formFile) close() {
	_ = f.closer.Close()
}

// upload returns the image to hand to the service, or nil if none was sent
func (f *formFile) upload() *services.ImageUpload {
	if f == nil {
		return nil
	}
	return f.image
}

// formImage opens the image part, returning nil when the request carries no image
func (h *EventHandler) formImage(w http.ResponseWriter, r *http.Request) (*formFile, bool) {
	if r.MultipartForm == nil {
		return nil, true
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		h.Logger.Error("failed to open image from form", zap.Error(err))
		h.RespondError(w, http.StatusBadRequest, "Failed to process image file")
		return nil, false
	}
	if header.Size == 0 {
		_ = file.Close()
		return nil, true
	}

	return &formFile{
		image: &services.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Reader:      file,
		},
		closer: file,
	}, true
}

func removeMultipartFiles(r *http.Request) {
	if r.MultipartForm != nil {
		_ = r.MultipartForm.RemoveAll()
	}
}

// parseEventFields reads the event form fields. Missing or empty fields stay nil.
func parseEventFields(form url.Values) (*models.UpdateEventRequest, error) {
	req := &models.UpdateEventRequest{
		Title:       formString(form, "title"),
		Description: formString(form, "description"),
		Category:    formString(form, "category"),
	}

	if v := formString(form, "date"); v != nil {
		date, err := parseDate(*v)
		if err != nil {
			return nil, err
		}
		req.Date = &date
	}
	if v := formString(form, "featured"); v != nil {
		featured, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, errors.New("featured must be true or false")
		}
		req.Featured = &featured
	}
	if v := formString(form, "order"); v != nil {
		order, err := strconv.Atoi(*v)
		if err != nil {
			return nil, errors.New("order must be an integer")
		}
		req.Order = &order
	}
	if v := formString(form, "isActive"); v != nil {
		isActive, err := strconv.ParseBool(*v)
		if err != nil {
			return nil, errors.New("isActive must be true or false")
		}
		req.IsActive = &isActive
	}

	return req, nil
}

// createRequest converts parsed form fields into a create request, leaving defaults for absent fields
func createRequest(fields *models.UpdateEventRequest) *models.CreateEventRequest {
	req := &models.CreateEventRequest{IsActive: fields.IsActive}
	if fields.Title != nil {
		req.Title = *fields.Title
	}
	if fields.Description != nil {
		req.Description = *fields.Description
	}
	if fields.Category != nil {
		req.Category = *fields.Category
	}
	if fields.Date != nil {
		req.Date = *fields.Date
	}
	if fields.Featured != nil {
		req.Featured = *fields.Featured
	}
	if fields.Order != nil {
		req.Order = *fields.Order
	}
	return req
}

func formString(form url.Values, key string) *string {
	v := strings.TrimSpace(form.Get(key))
	if v == "" {
		return nil
	}
	return &v
}

// parseDate accepts RFC 3339 timestamps and plain YYYY-MM-DD dates
func parseDate(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	return time.Time{}, errors.New("date must be in RFC3339 or YYYY-MM-DD format")
}
