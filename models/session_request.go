package models

import "time"

// SessionRequest statuses.
const (
	RequestPendingPayment  = "PENDING_PAYMENT"
	RequestPendingApproval = "PENDING_APPROVAL"
	RequestApproved        = "APPROVED"
	RequestRejected        = "REJECTED"
	RequestExpired         = "EXPIRED"
	RequestCancelled       = "CANCELLED"
)

// ActiveRequestStatuses are the non-terminal statuses that occupy a slot
// tuple. The partial unique index on session_requests is scoped to these.
var ActiveRequestStatuses = []string{RequestPendingPayment, RequestPendingApproval}

// SessionRequest is a booking attempt moving through payment and approval.
type SessionRequest struct {
	ID                   string     `bson:"id" json:"id"`
	SpecialistID         string     `bson:"specialistId" json:"specialistId"`
	UserID               string     `bson:"userId" json:"userId"`
	Date                 string     `bson:"date" json:"date"`           // "2006-01-02"
	StartTime            string     `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime              string     `bson:"endTime" json:"endTime"`
	Amount               float64    `bson:"amount" json:"amount"`
	Currency             string     `bson:"currency" json:"currency"`
	Status               string     `bson:"status" json:"status"`
	PaymentScreenshotURL string     `bson:"paymentScreenshotUrl,omitempty" json:"paymentScreenshotUrl,omitempty"`
	ExpiresAt            *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	SessionTitle         string     `bson:"sessionTitle,omitempty" json:"sessionTitle,omitempty"`
	SessionType          string     `bson:"sessionType,omitempty" json:"sessionType,omitempty"`
	RejectionReason      string     `bson:"rejectionReason,omitempty" json:"rejectionReason,omitempty"`
	CreatedAt            time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether no further transitions are possible.
func (r *SessionRequest) IsTerminal() bool {
	switch r.Status {
	case RequestApproved, RequestRejected, RequestExpired, RequestCancelled:
		return true
	}
	return false
}

// PaymentExpired reports whether the payment deadline has passed at now.
func (r *SessionRequest) PaymentExpired(now time.Time) bool {
	return r.Status == RequestPendingPayment && r.ExpiresAt != nil && !now.Before(*r.ExpiresAt)
}
