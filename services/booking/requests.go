package booking

import (
	"context"
	"errors"
	"fmt"

	"fikerless/database/repository"
	requestRepo "fikerless/database/repository/sessionrequest"
	"fikerless/models"
	"fikerless/utils"

	"go.uber.org/zap"
)

// CreateRequest opens a booking attempt in PENDING_PAYMENT. Availability is
// re-validated at call time, but the partial unique index on the request
// collection is the authoritative race-breaker: the losing side of a
// concurrent duplicate insert gets a SlotConflictError.
func (s *DefaultBookingService) CreateRequest(ctx context.Context, input CreateRequestInput) (*models.SessionRequest, error) {
	if input.UserID == "" {
		return nil, &ValidationError{Field: "userId", Message: "required"}
	}
	if input.SpecialistID == "" {
		return nil, &ValidationError{Field: "specialistId", Message: "required"}
	}
	if _, err := parseClock(input.StartTime); err != nil {
		return nil, &ValidationError{Field: "startTime", Message: err.Error()}
	}
	if input.Amount <= 0 {
		return nil, &ValidationError{Field: "amount", Message: "must be positive"}
	}

	slots, err := s.AvailableSlots(ctx, input.SpecialistID, input.Date)
	if err != nil {
		return nil, err
	}
	var endTime string
	for _, slot := range slots {
		if slot.StartTime == input.StartTime {
			endTime = slot.EndTime
			break
		}
	}
	if endTime == "" {
		return nil, &SlotConflictError{
			SpecialistID: input.SpecialistID,
			Date:         input.Date,
			StartTime:    input.StartTime,
		}
	}

	expiresAt := s.Clock.Now().Add(s.PaymentWindow)
	req := &models.SessionRequest{
		SpecialistID: input.SpecialistID,
		UserID:       input.UserID,
		Date:         input.Date,
		StartTime:    input.StartTime,
		EndTime:      endTime,
		Amount:       input.Amount,
		Currency:     input.Currency,
		Status:       models.RequestPendingPayment,
		ExpiresAt:    &expiresAt,
		SessionTitle: input.SessionTitle,
		SessionType:  input.SessionType,
	}

	err = s.Requests.Insert(ctx, req)
	if errors.Is(err, repository.ErrDuplicateSlot) && s.releaseExpiredHold(ctx, input.SpecialistID, input.Date, input.StartTime) {
		// The index hit was a stale pending-payment hold past its deadline;
		// with it expired the tuple is free again.
		err = s.Requests.Insert(ctx, req)
	}
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, &SlotConflictError{
				SpecialistID: input.SpecialistID,
				Date:         input.Date,
				StartTime:    input.StartTime,
			}
		}
		return nil, fmt.Errorf("failed to create session request: %w", err)
	}

	utils.GetLogger().Info("session request created",
		zap.String("requestID", req.ID),
		zap.String("specialistID", req.SpecialistID),
		zap.String("date", req.Date),
		zap.String("startTime", req.StartTime))
	return req, nil
}

// SubmitPayment moves a request to PENDING_APPROVAL, recording the payment
// screenshot. Past the payment deadline the request is lazily expired and
// the caller should treat the slot as released.
func (s *DefaultBookingService) SubmitPayment(ctx context.Context, requestID, screenshotURL string) (*models.SessionRequest, error) {
	if screenshotURL == "" {
		return nil, &ValidationError{Field: "screenshotUrl", Message: "required"}
	}

	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.PaymentExpired(s.Clock.Now()) {
		s.expireLazily(ctx, req)
		return nil, &RequestExpiredError{RequestID: requestID, ExpiresAt: *req.ExpiresAt}
	}
	if req.Status != models.RequestPendingPayment {
		return nil, &InvalidStateError{Entity: "session request", ID: requestID, Current: req.Status, Action: "submit payment for"}
	}

	update := requestRepo.RequestUpdate{
		Status:               models.RequestPendingApproval,
		PaymentScreenshotURL: screenshotURL,
	}
	if err := s.Requests.Transition(ctx, requestID, models.RequestPendingPayment, update); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifyRequestFailure(ctx, requestID, models.RequestPendingPayment, "submit payment for")
		}
		return nil, fmt.Errorf("failed to submit payment: %w", err)
	}

	req.Status = models.RequestPendingApproval
	req.PaymentScreenshotURL = screenshotURL
	return req, nil
}

// Approve confirms a request and synchronously materializes its Session.
// The session unique index guards the narrow race between two admins
// approving overlapping requests: first wins, second gets SlotConflictError.
func (s *DefaultBookingService) Approve(ctx context.Context, requestID, notes string) (*models.Session, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPendingApproval {
		return nil, &InvalidStateError{Entity: "session request", ID: requestID, Current: req.Status, Action: "approve"}
	}

	// Overlap check against already-confirmed sessions. Exact-tuple
	// duplicates are caught by the unique index below; overlapping but
	// non-identical start times need this read-side check.
	if err := s.checkSessionOverlap(ctx, req); err != nil {
		return nil, err
	}

	update := requestRepo.RequestUpdate{Status: models.RequestApproved}
	if err := s.Requests.Transition(ctx, requestID, models.RequestPendingApproval, update); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifyRequestFailure(ctx, requestID, models.RequestPendingApproval, "approve")
		}
		return nil, fmt.Errorf("failed to approve request: %w", err)
	}

	session, err := s.materializeSession(ctx, req, notes)
	if err != nil {
		// Give the admin another shot at the request rather than stranding
		// it in APPROVED with no session.
		s.rollbackApproval(ctx, requestID)
		return nil, err
	}

	utils.GetLogger().Info("session request approved",
		zap.String("requestID", requestID),
		zap.String("sessionID", session.ID))
	return session, nil
}

// Reject declines a request pending approval.
func (s *DefaultBookingService) Reject(ctx context.Context, requestID, reason string) (*models.SessionRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != models.RequestPendingApproval {
		return nil, &InvalidStateError{Entity: "session request", ID: requestID, Current: req.Status, Action: "reject"}
	}

	update := requestRepo.RequestUpdate{Status: models.RequestRejected, RejectionReason: reason}
	if err := s.Requests.Transition(ctx, requestID, models.RequestPendingApproval, update); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifyRequestFailure(ctx, requestID, models.RequestPendingApproval, "reject")
		}
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}

	req.Status = models.RequestRejected
	req.RejectionReason = reason
	return req, nil
}

// CancelRequest cancels a request from any non-terminal state.
func (s *DefaultBookingService) CancelRequest(ctx context.Context, requestID string) (*models.SessionRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.IsTerminal() {
		return nil, &InvalidStateError{Entity: "session request", ID: requestID, Current: req.Status, Action: "cancel"}
	}

	update := requestRepo.RequestUpdate{Status: models.RequestCancelled}
	if err := s.Requests.Transition(ctx, requestID, req.Status, update); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifyRequestFailure(ctx, requestID, req.Status, "cancel")
		}
		return nil, fmt.Errorf("failed to cancel request: %w", err)
	}

	req.Status = models.RequestCancelled
	return req, nil
}

// GetRequest reads a request, lazily expiring it when the payment deadline
// has passed.
func (s *DefaultBookingService) GetRequest(ctx context.Context, requestID string) (*models.SessionRequest, error) {
	req, err := s.getRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.PaymentExpired(s.Clock.Now()) {
		s.expireLazily(ctx, req)
	}
	return req, nil
}

func (s *DefaultBookingService) ListUserRequests(ctx context.Context, userID string) ([]models.SessionRequest, error) {
	reqs, err := s.Requests.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	s.expireStale(ctx, reqs)
	return reqs, nil
}

func (s *DefaultBookingService) ListSpecialistRequests(ctx context.Context, specialistID string, statuses []string) ([]models.SessionRequest, error) {
	reqs, err := s.Requests.ListBySpecialist(ctx, specialistID, statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	s.expireStale(ctx, reqs)
	return reqs, nil
}

func (s *DefaultBookingService) getRequest(ctx context.Context, requestID string) (*models.SessionRequest, error) {
	req, err := s.Requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "session request", ID: requestID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session request: %w", err)
	}
	return req, nil
}

// expireLazily applies the system EXPIRED transition on a read path. Best
// effort: a lost race means someone else already moved the request on.
func (s *DefaultBookingService) expireLazily(ctx context.Context, req *models.SessionRequest) {
	update := requestRepo.RequestUpdate{Status: models.RequestExpired}
	err := s.Requests.Transition(ctx, req.ID, models.RequestPendingPayment, update)
	if err != nil && !errors.Is(err, repository.ErrNotMatched) {
		utils.GetLogger().Warn("failed to expire session request",
			zap.String("requestID", req.ID), zap.Error(err))
		return
	}
	if err == nil {
		req.Status = models.RequestExpired
	}
}

// releaseExpiredHold expires any abandoned PENDING_PAYMENT request still
// occupying the (specialist, date, startTime) tuple in the unique index.
// Returns true when at least one hold was expired, so the insert can be
// retried against a freed slot.
func (s *DefaultBookingService) releaseExpiredHold(ctx context.Context, specialistID, date, startTime string) bool {
	active, err := s.Requests.FindActiveByDate(ctx, specialistID, date)
	if err != nil {
		utils.GetLogger().Warn("failed to look up active requests for slot",
			zap.String("specialistID", specialistID), zap.String("date", date), zap.Error(err))
		return false
	}
	now := s.Clock.Now()
	released := false
	for i := range active {
		if active[i].StartTime != startTime || !active[i].PaymentExpired(now) {
			continue
		}
		s.expireLazily(ctx, &active[i])
		if active[i].Status == models.RequestExpired {
			released = true
		}
	}
	return released
}

func (s *DefaultBookingService) expireStale(ctx context.Context, reqs []models.SessionRequest) {
	now := s.Clock.Now()
	for i := range reqs {
		if reqs[i].PaymentExpired(now) {
			s.expireLazily(ctx, &reqs[i])
		}
	}
}

// classifyRequestFailure disambiguates a conditional write that matched
// nothing: the document vanished, the status changed under us, or another
// writer applied the same transition first.
func (s *DefaultBookingService) classifyRequestFailure(ctx context.Context, requestID, expectedStatus, action string) error {
	req, err := s.Requests.GetByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: "session request", ID: requestID}
	}
	if err != nil {
		return fmt.Errorf("failed to classify transition failure: %w", err)
	}
	if req.Status == expectedStatus {
		return &ConcurrentModificationError{Entity: "session request", ID: requestID}
	}
	return &InvalidStateError{Entity: "session request", ID: requestID, Current: req.Status, Action: action}
}

func (s *DefaultBookingService) rollbackApproval(ctx context.Context, requestID string) {
	update := requestRepo.RequestUpdate{Status: models.RequestPendingApproval}
	if err := s.Requests.Transition(ctx, requestID, models.RequestApproved, update); err != nil {
		utils.GetLogger().Error("failed to roll back approval",
			zap.String("requestID", requestID), zap.Error(err))
	}
}
