package handlers

import (
	"net/http"
	"os"
	"path/filepath"

	"fikerless/models"
	"fikerless/services/booking"
	"fikerless/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionHandler exposes the confirmed-session lifecycle endpoints.
type SessionHandler struct {
	Service booking.BookingService
	Logger  *zap.Logger
}

func NewSessionHandler(svc booking.BookingService, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{Service: svc, Logger: logger}
}

// UpdateStatus moves a confirmed session to a terminal status.
func (h *SessionHandler) UpdateStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Notes  string `json:"notes"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	sessionID := c.Param("id")

	var (
		session *models.Session
		err     error
	)
	switch input.Status {
	case models.SessionCompleted:
		session, err = h.Service.CompleteSession(ctx, sessionID, input.Notes)
	case models.SessionCancelled:
		session, err = h.Service.CancelSession(ctx, sessionID, input.Reason)
	case models.SessionNoShow:
		session, err = h.Service.MarkNoShow(ctx, sessionID)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be COMPLETED, CANCELLED or NO_SHOW"})
		return
	}
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// UploadSessionFile accepts a multipart file and attaches it to the session.
func (h *SessionHandler) UploadSessionFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required", "details": err.Error()})
		return
	}

	tempPath := filepath.Join(os.TempDir(), fileHeader.Filename)
	if err := c.SaveUploadedFile(fileHeader, tempPath); err != nil {
		h.Logger.Error("Failed to save uploaded session file", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to process file", err.Error())
		return
	}
	defer os.Remove(tempPath)

	session, err := h.Service.AttachSessionFile(c.Request.Context(), c.Param("id"), tempPath)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// GetSession fetches one session by id.
func (h *SessionHandler) GetSession(c *gin.Context) {
	session, err := h.Service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// ListSessions returns the authenticated caller's sessions: the ones they
// booked, or the ones they host if the caller is a specialist.
func (h *SessionHandler) ListSessions(c *gin.Context) {
	ctx := c.Request.Context()
	callerID := c.GetString("callerID")

	var (
		sessions []models.Session
		err      error
	)
	if c.GetString("callerRole") == "specialist" {
		sessions, err = h.Service.ListSpecialistSessions(ctx, callerID)
	} else {
		sessions, err = h.Service.ListUserSessions(ctx, callerID)
	}
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// ListSpecialistSessions returns a specialist's sessions.
func (h *SessionHandler) ListSpecialistSessions(c *gin.Context) {
	sessions, err := h.Service.ListSpecialistSessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

// Health reports process health.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
