package models

import "time"

// Session statuses. Only CONFIRMED allows further transitions.
const (
	SessionConfirmed = "CONFIRMED"
	SessionCompleted = "COMPLETED"
	SessionCancelled = "CANCELLED"
	SessionNoShow    = "NO_SHOW"
)

// Session is a confirmed booking, materialized exactly once from an
// approved SessionRequest. SessionRequestID is an immutable 1:1
// back-reference; (SpecialistID, Date, StartTime) is globally unique.
type Session struct {
	ID                 string     `bson:"id" json:"id"`
	SpecialistID       string     `bson:"specialistId" json:"specialistId"`
	UserID             string     `bson:"userId" json:"userId"`
	SessionRequestID   string     `bson:"sessionRequestId" json:"sessionRequestId"`
	Date               string     `bson:"date" json:"date"`
	StartTime          string     `bson:"startTime" json:"startTime"`
	EndTime            string     `bson:"endTime" json:"endTime"`
	StartAt            time.Time  `bson:"startAt" json:"startAt"` // Date+StartTime in the specialist's timezone
	Amount             float64    `bson:"amount" json:"amount"`
	Currency           string     `bson:"currency" json:"currency"`
	Status             string     `bson:"status" json:"status"`
	Notes              string     `bson:"notes,omitempty" json:"notes,omitempty"`
	CancellationReason string     `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CompletedAt        *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	SessionFile        string     `bson:"sessionFile,omitempty" json:"sessionFile,omitempty"`
	SessionTitle       string     `bson:"sessionTitle,omitempty" json:"sessionTitle,omitempty"`
	SessionType        string     `bson:"sessionType,omitempty" json:"sessionType,omitempty"`
	CreatedAt          time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the session has reached a final status.
func (s *Session) IsTerminal() bool {
	return s.Status != SessionConfirmed
}
