package booking

import (
	"context"
	"time"

	availabilityRepo "fikerless/database/repository/availability"
	sessionRepo "fikerless/database/repository/session"
	requestRepo "fikerless/database/repository/sessionrequest"
	"fikerless/models"
	"fikerless/services/storage"
	"fikerless/utils"
)

// CreateRequestInput is the payload for opening a booking attempt.
type CreateRequestInput struct {
	UserID       string  `json:"userId"`
	SpecialistID string  `json:"specialistId"`
	Date         string  `json:"date"`
	StartTime    string  `json:"startTime"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	SessionTitle string  `json:"sessionTitle,omitempty"`
	SessionType  string  `json:"sessionType,omitempty"`
}

// AvailabilityView bundles a specialist's rules and settings for the
// management endpoints.
type AvailabilityView struct {
	Rules    []models.AvailabilityRule   `json:"rules"`
	Settings models.AvailabilitySettings `json:"settings"`
}

// BookingService is the booking and scheduling core: slot generation, the
// session-request state machine, and the confirmed-session lifecycle.
type BookingService interface {
	// Availability management.
	GetAvailability(ctx context.Context, specialistID string) (*AvailabilityView, error)
	SetRules(ctx context.Context, specialistID string, rules []models.AvailabilityRule) error
	UpdateSettings(ctx context.Context, specialistID string, slotDuration, breakMinutes int, timezone string) (*models.AvailabilitySettings, error)

	// Slot generation.
	AvailableSlots(ctx context.Context, specialistID, date string) ([]models.Slot, error)

	// Session-request state machine.
	CreateRequest(ctx context.Context, input CreateRequestInput) (*models.SessionRequest, error)
	SubmitPayment(ctx context.Context, requestID, screenshotURL string) (*models.SessionRequest, error)
	Approve(ctx context.Context, requestID, notes string) (*models.Session, error)
	Reject(ctx context.Context, requestID, reason string) (*models.SessionRequest, error)
	CancelRequest(ctx context.Context, requestID string) (*models.SessionRequest, error)
	GetRequest(ctx context.Context, requestID string) (*models.SessionRequest, error)
	ListUserRequests(ctx context.Context, userID string) ([]models.SessionRequest, error)
	ListSpecialistRequests(ctx context.Context, specialistID string, statuses []string) ([]models.SessionRequest, error)

	// Confirmed-session lifecycle.
	CompleteSession(ctx context.Context, sessionID, notes string) (*models.Session, error)
	CancelSession(ctx context.Context, sessionID, reason string) (*models.Session, error)
	MarkNoShow(ctx context.Context, sessionID string) (*models.Session, error)
	AttachSessionFile(ctx context.Context, sessionID, localFilePath string) (*models.Session, error)
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
	ListUserSessions(ctx context.Context, userID string) ([]models.Session, error)
	ListSpecialistSessions(ctx context.Context, specialistID string) ([]models.Session, error)
}

// DefaultBookingService is the production implementation.
type DefaultBookingService struct {
	Availability  availabilityRepo.AvailabilityRepository
	Requests      requestRepo.SessionRequestRepository
	Sessions      sessionRepo.SessionRepository
	Storage       storage.StorageService
	Clock         utils.Clock
	PaymentWindow time.Duration
}
