package handlers

import (
	"net/http"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CreateCalendar creates a calendar owned by the caller.
func CreateCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		var calendar models.Calendar
		if err := c.ShouldBindJSON(&calendar); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		created, err := cs.CreateCalendar(c.Request.Context(), &calendar, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Calendar created successfully"))
	}
}

// ListCalendars returns all calendars, or only the caller's when
// ?owner=me.
func ListCalendars(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var ownerID *uuid.UUID
		if c.Query("owner") == "me" {
			user, ok := mustCurrentUser(c)
			if !ok {
				return
			}
			ownerID = &user.ID
		}

		calendars, err := cs.GetCalendars(c.Request.Context(), ownerID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(calendars, ""))
	}
}

func GetCalendarByID(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		calendar, err := cs.GetCalendarByID(c.Request.Context(), calendarID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(calendar, ""))
	}
}

func GetCalendarBySlug(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.Param("slug")
		if slug == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("calendar slug is required"))
			return
		}

		calendar, err := cs.GetCalendarBySlug(c.Request.Context(), slug)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(calendar, ""))
	}
}

// GetCalendarEvents lists the events attached to a calendar.
func GetCalendarEvents(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		filters, err := parseEventFilters(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		events, err := cs.GetCalendarEvents(c.Request.Context(), calendarID, filters)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(events, ""))
	}
}

// UpdateCalendar applies partial updates to a calendar the caller owns.
func UpdateCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		var updates map[string]any
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		updated, err := cs.UpdateCalendar(c.Request.Context(), calendarID, user.ID, updates)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Calendar updated successfully"))
	}
}

func DeleteCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		if err := cs.DeleteCalendar(c.Request.Context(), calendarID, user.ID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Calendar deleted successfully"))
	}
}

// SubscribeToCalendar subscribes the caller to a calendar.
func SubscribeToCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		subscription, err := cs.Subscribe(c.Request.Context(), calendarID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(subscription, "Subscribed successfully"))
	}
}

// UnsubscribeFromCalendar removes the caller's subscription.
func UnsubscribeFromCalendar(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		calendarID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid calendar ID format"))
			return
		}

		if err := cs.Unsubscribe(c.Request.Context(), calendarID, user.ID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Unsubscribed successfully"))
	}
}

// GetMySubscriptions lists the caller's calendar subscriptions.
func GetMySubscriptions(cs *services.CalendarService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		subscriptions, err := cs.GetSubscriptions(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(subscriptions, ""))
	}
}
