package handlers

import (
	"net/http"

	"github.com/blendhq/blend-server/internal/models"
	"github.com/blendhq/blend-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RegisterForEvent registers the caller for an event. The response
// status reflects the admission outcome carried in the registration
// status field (approved, pending or waitlist).
func RegisterForEvent(rs *services.RegistrationService) gin.HandlerFunc {
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

		var input models.RegisterForEventInput
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&input); err != nil {
				c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
				return
			}
		}
		input.EventID = eventID

		registration, err := rs.Register(c.Request.Context(), input, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(registration, "Registered successfully"))
	}
}

// CancelMyRegistration cancels the caller's registration for an event.
// Safe to repeat.
func CancelMyRegistration(rs *services.RegistrationService) gin.HandlerFunc {
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

		if err := rs.CancelRegistration(c.Request.Context(), eventID, user.ID); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Registration cancelled"))
	}
}

// GetMyRegistrations lists the caller's non-cancelled registrations.
func GetMyRegistrations(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		registrations, err := rs.GetMyRegistrations(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(registrations, ""))
	}
}

// GetMyRegistrationForEvent returns the caller's latest registration
// for one event.
func GetMyRegistrationForEvent(rs *services.RegistrationService) gin.HandlerFunc {
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

		registration, err := rs.GetRegistration(c.Request.Context(), eventID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(registration, ""))
	}
}

// GetEventGuests lists an event's guest roster. Host only.
func GetEventGuests(rs *services.RegistrationService) gin.HandlerFunc {
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

		guests, err := rs.GetEventGuests(c.Request.Context(), eventID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(guests, ""))
	}
}

type updateGuestStatusRequest struct {
	Status models.RegistrationStatus `json:"status" binding:"required"`
}

// UpdateGuestStatus moves a guest's registration to a new status. Host
// only.
func UpdateGuestStatus(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		registrationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid registration ID format"))
			return
		}

		var req updateGuestStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		registration, err := rs.UpdateGuestStatus(c.Request.Context(), registrationID, req.Status, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(registration, "Guest status updated"))
	}
}

// CheckInGuest marks an approved guest as checked in. Host only.
func CheckInGuest(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := mustCurrentUser(c)
		if !ok {
			return
		}

		registrationID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid registration ID format"))
			return
		}

		registration, err := rs.CheckInGuest(c.Request.Context(), registrationID, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(registration, "Guest checked in"))
	}
}

type sendInvitationsRequest struct {
	Emails []string `json:"emails" binding:"required,min=1"`
}

// SendInvitations creates invitations for a list of email addresses.
// Host only.
func SendInvitations(rs *services.RegistrationService) gin.HandlerFunc {
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

		var req sendInvitationsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		invitations, err := rs.SendInvitations(c.Request.Context(), eventID, req.Emails, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(invitations, "Invitations sent"))
	}
}

type paymentWebhookRequest struct {
	RegistrationID  uuid.UUID `json:"registration_id" binding:"required"`
	PaymentIntentID string    `json:"payment_intent_id" binding:"required"`
	Status          string    `json:"status" binding:"required,oneof=succeeded failed"`
}

// PaymentWebhook receives payment outcome signals from the payment
// provider and settles the registration's payment status.
func PaymentWebhook(rs *services.RegistrationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req paymentWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		var (
			registration *models.Registration
			err          error
		)
		if req.Status == "succeeded" {
			registration, err = rs.ConfirmPayment(c.Request.Context(), req.RegistrationID, req.PaymentIntentID)
		} else {
			registration, err = rs.FailPayment(c.Request.Context(), req.RegistrationID, req.PaymentIntentID)
		}
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(registration, "Payment recorded"))
	}
}
