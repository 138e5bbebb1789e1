package handlers

import (
	"net/http"

	"fikerless/models"
	"fikerless/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes slot queries and the session-request state machine.
type BookingHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewBookingHandler(svc booking.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Service: svc, Logger: logger}
}

// GetAvailableSlots returns the bookable slots for a specialist on a date.
func (h *BookingHandler) GetAvailableSlots(c *gin.Context) {
	specialistID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	slots, err := h.Service.AvailableSlots(c.Request.Context(), specialistID, date)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"specialistId": specialistID, "date": date, "slots": slots})
}

// GetAvailability returns a specialist's rules and settings.
func (h *BookingHandler) GetAvailability(c *gin.Context) {
	view, err := h.Service.GetAvailability(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SetAvailability replaces a specialist's rules and/or settings.
func (h *BookingHandler) SetAvailability(c *gin.Context) {
	specialistID := c.Param("id")
	var input struct {
		Rules    []models.AvailabilityRule `json:"rules"`
		Settings *struct {
			SlotDurationMinutes int    `json:"slotDurationMinutes"`
			BreakMinutes        int    `json:"breakMinutes"`
			Timezone            string `json:"timezone"`
		} `json:"settings"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if input.Rules != nil {
		if err := h.Service.SetRules(ctx, specialistID, input.Rules); err != nil {
			respondBookingError(c, err)
			return
		}
	}
	if input.Settings != nil {
		set := input.Settings
		if _, err := h.Service.UpdateSettings(ctx, specialistID, set.SlotDurationMinutes, set.BreakMinutes, set.Timezone); err != nil {
			respondBookingError(c, err)
			return
		}
	}

	view, err := h.Service.GetAvailability(ctx, specialistID)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// CreateRequest opens a booking attempt for the authenticated user.
func (h *BookingHandler) CreateRequest(c *gin.Context) {
	var input booking.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	input.UserID = c.GetString("callerID")

	req, err := h.Service.CreateRequest(c.Request.Context(), input)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// SubmitPayment attaches a payment screenshot to a pending request.
func (h *BookingHandler) SubmitPayment(c *gin.Context) {
	var input struct {
		ScreenshotURL string `json:"screenshotUrl" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req, err := h.Service.SubmitPayment(c.Request.Context(), c.Param("id"), input.ScreenshotURL)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ApproveRequest confirms a request and returns the materialized session.
func (h *BookingHandler) ApproveRequest(c *gin.Context) {
	var input struct {
		Notes string `json:"notes"`
	}
	// Body is optional for approvals.
	_ = c.ShouldBindJSON(&input)

	session, err := h.Service.Approve(c.Request.Context(), c.Param("id"), input.Notes)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

// RejectRequest declines a request pending approval.
func (h *BookingHandler) RejectRequest(c *gin.Context) {
	var input struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req, err := h.Service.Reject(c.Request.Context(), c.Param("id"), input.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CancelRequest cancels a non-terminal request.
func (h *BookingHandler) CancelRequest(c *gin.Context) {
	req, err := h.Service.CancelRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// GetRequest fetches one request by id.
func (h *BookingHandler) GetRequest(c *gin.Context) {
	req, err := h.Service.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// ListMyRequests returns the authenticated user's requests.
func (h *BookingHandler) ListMyRequests(c *gin.Context) {
	reqs, err := h.Service.ListUserRequests(c.Request.Context(), c.GetString("callerID"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}

// ListSpecialistRequests returns a specialist's requests, optionally
// filtered by status.
func (h *BookingHandler) ListSpecialistRequests(c *gin.Context) {
	statuses := c.QueryArray("status")
	reqs, err := h.Service.ListSpecialistRequests(c.Request.Context(), c.Param("id"), statuses)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": reqs})
}
