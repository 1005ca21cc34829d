package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// parseEventFilters builds query filters for event listing. Bad values
// get rejected rather than silently ignored.
func parseEventFilters(c *gin.Context) (models.EventFilters, error) {
	var filters models.EventFilters

	limit := c.DefaultQuery("limit", "20")
	limitInt, err := strconv.Atoi(limit)
	if err != nil || limitInt <= 0 {
		return filters, errInvalidQuery("limit")
	}
	offset := c.DefaultQuery("offset", "0")
	offsetInt, err := strconv.Atoi(offset)
	if err != nil || offsetInt < 0 {
		return filters, errInvalidQuery("offset")
	}
	filters.Limit = limitInt
	filters.Offset = offsetInt

	if hostID := c.Query("host_id"); hostID != "" {
		parsed, err := uuid.Parse(hostID)
		if err != nil {
			return filters, errInvalidQuery("host_id")
		}
		filters.HostID = &parsed
	}
	if calendarID := c.Query("calendar_id"); calendarID != "" {
		parsed, err := uuid.Parse(calendarID)
		if err != nil {
			return filters, errInvalidQuery("calendar_id")
		}
		filters.CalendarID = &parsed
	}
	if status := c.Query("status"); status != "" {
		filters.Status = models.EventStatus(status)
	}
	if visibility := c.Query("visibility"); visibility != "" {
		filters.Visibility = models.EventVisibility(visibility)
	}
	if locationType := c.Query("location_type"); locationType != "" {
		filters.LocationType = models.LocationType(locationType)
	}
	if after := c.Query("start_after"); after != "" {
		t, err := time.Parse(time.RFC3339, after)
		if err != nil {
			return filters, errInvalidQuery("start_after")
		}
		filters.StartAfter = &t
	}
	if before := c.Query("start_before"); before != "" {
		t, err := time.Parse(time.RFC3339, before)
		if err != nil {
			return filters, errInvalidQuery("start_before")
		}
		filters.StartBefore = &t
	}
	filters.Search = c.Query("search")

	return filters, nil
}

type queryError string

func errInvalidQuery(param string) error { return queryError(param) }

func (q queryError) Error() string { return "invalid " + string(q) + " parameter" }

// CreateEvent creates a draft (or immediately published) event hosted
// by the caller.
func CreateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := e.CreateEvent(c.Request.Context(), &event, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

// ListEvents returns events visible to the caller, filtered by query
// parameters.
func ListEvents(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := parseEventFilters(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		caller, _ := currentUser(c)
		events, err := e.GetEvents(c.Request.Context(), filters, caller)
		if err != nil {
			respondError(c, err)
			return
		}

		page := (filters.Offset / filters.Limit) + 1
		c.JSON(http.StatusOK, models.PaginatedResponse(events, page, filters.Limit))
	}
}

func GetEventByID(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		event, err := e.GetEventByID(c.Request.Context(), eventID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func GetEventBySlug(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("event slug is required"))
			return
		}

		event, err := e.GetEventBySlug(c.Request.Context(), slug)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

// UpdateEvent applies partial updates to an event the caller hosts.
func UpdateEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		var updates map[string]any
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := e.UpdateEvent(c.Request.Context(), eventID, user.ID, updates)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		if err := e.DeleteEvent(c.Request.Context(), eventID, user.ID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Event deleted successfully"))
	}
}

// PublishEvent moves a draft event to published.
func PublishEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		event, err := e.PublishEvent(c.Request.Context(), eventID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, "Event published successfully"))
	}
}

// CancelEvent cancels a published event.
func CancelEvent(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		event, err := e.CancelEvent(c.Request.Context(), eventID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, "Event cancelled"))
	}
}

// UploadEventCover accepts a multipart cover image, stores it on
// Cloudinary and sets it on the event.
func UploadEventCover(e *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		eventID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
			return
		}

		file, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("image file is required"))
			return
		}

		tmpPath := filepath.Join(os.TempDir(), uuid.New().String()+filepath.Ext(file.Filename))
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse("failed to store uploaded file"))
			return
		}
		defer os.Remove(tmpPath)

		event, err := e.UploadCoverImage(c.Request.Context(), eventID, user.ID, tmpPath)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, "Cover image uploaded successfully"))
	}
}
