package booking

import (
	"context"
	"errors"
	"fmt"

	"fikerless/database/repository"
	sessionRepo "fikerless/database/repository/session"
	"fikerless/models"
	"fikerless/utils"

	"go.uber.org/zap"
)

// checkSessionOverlap rejects an approval whose time range collides with an
// already-confirmed session on the same date.
func (s *DefaultBookingService) checkSessionOverlap(ctx context.Context, req *models.SessionRequest) error {
	reqStart, err := parseClock(req.StartTime)
	if err != nil {
		return &ValidationError{Field: "startTime", Message: err.Error()}
	}
	reqEnd, err := parseClock(req.EndTime)
	if err != nil {
		return &ValidationError{Field: "endTime", Message: err.Error()}
	}

	confirmed, err := s.Sessions.FindConfirmedByDate(ctx, req.SpecialistID, req.Date)
	if err != nil {
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}
	for _, sess := range confirmed {
		start, err := parseClock(sess.StartTime)
		if err != nil {
			continue
		}
		end, err := parseClock(sess.EndTime)
		if err != nil {
			continue
		}
		if rangesOverlap(reqStart, reqEnd, start, end) {
			return &SlotConflictError{
				SpecialistID: req.SpecialistID,
				Date:         req.Date,
				StartTime:    req.StartTime,
			}
		}
	}
	return nil
}

// materializeSession creates the confirmed Session for an approved request.
// Created exactly once: the unique indexes on the tuple and on the request
// back-reference reject any second materialization.
func (s *DefaultBookingService) materializeSession(ctx context.Context, req *models.SessionRequest, notes string) (*models.Session, error) {
	settings, err := s.getOrCreateSettings(ctx, req.SpecialistID)
	if err != nil {
		return nil, err
	}
	startAt, err := combineDateTime(req.Date, req.StartTime, settings.Location())
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}

	session := &models.Session{
		SpecialistID:     req.SpecialistID,
		UserID:           req.UserID,
		SessionRequestID: req.ID,
		Date:             req.Date,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		StartAt:          startAt.UTC(),
		Amount:           req.Amount,
		Currency:         req.Currency,
		Status:           models.SessionConfirmed,
		Notes:            notes,
		SessionTitle:     req.SessionTitle,
		SessionType:      req.SessionType,
	}

	if err := s.Sessions.Insert(ctx, session); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateSlot):
			return nil, &SlotConflictError{
				SpecialistID: req.SpecialistID,
				Date:         req.Date,
				StartTime:    req.StartTime,
			}
		case errors.Is(err, repository.ErrDuplicateRequestRef):
			return nil, &ConcurrentModificationError{Entity: "session request", ID: req.ID}
		default:
			return nil, fmt.Errorf("failed to create session: %w", err)
		}
	}
	return session, nil
}

// CompleteSession marks a confirmed session as held.
func (s *DefaultBookingService) CompleteSession(ctx context.Context, sessionID, notes string) (*models.Session, error) {
	now := s.Clock.Now().UTC()
	update := sessionRepo.SessionUpdate{
		Status:      models.SessionCompleted,
		Notes:       notes,
		CompletedAt: &now,
	}
	return s.transitionSession(ctx, sessionID, update, "complete")
}

// CancelSession cancels a confirmed session with a reason.
func (s *DefaultBookingService) CancelSession(ctx context.Context, sessionID, reason string) (*models.Session, error) {
	if reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "required"}
	}
	now := s.Clock.Now().UTC()
	update := sessionRepo.SessionUpdate{
		Status:             models.SessionCancelled,
		CancellationReason: reason,
		CancelledAt:        &now,
	}
	return s.transitionSession(ctx, sessionID, update, "cancel")
}

// MarkNoShow records that a confirmed session was not attended.
func (s *DefaultBookingService) MarkNoShow(ctx context.Context, sessionID string) (*models.Session, error) {
	update := sessionRepo.SessionUpdate{Status: models.SessionNoShow}
	return s.transitionSession(ctx, sessionID, update, "mark no-show on")
}

// transitionSession applies a terminal change from CONFIRMED, then returns
// the updated session.
func (s *DefaultBookingService) transitionSession(ctx context.Context, sessionID string, update sessionRepo.SessionUpdate, action string) (*models.Session, error) {
	if err := s.Sessions.Transition(ctx, sessionID, models.SessionConfirmed, update); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifySessionFailure(ctx, sessionID, action)
		}
		return nil, fmt.Errorf("failed to %s session: %w", action, err)
	}

	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("session transitioned",
		zap.String("sessionID", sessionID),
		zap.String("status", session.Status))
	return session, nil
}

// AttachSessionFile uploads a file and links it to the session. Allowed
// while the session is confirmed or completed, never after cancellation.
func (s *DefaultBookingService) AttachSessionFile(ctx context.Context, sessionID, localFilePath string) (*models.Session, error) {
	session, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionConfirmed && session.Status != models.SessionCompleted {
		return nil, &InvalidStateError{Entity: "session", ID: sessionID, Current: session.Status, Action: "attach file to"}
	}

	fileURL, err := s.Storage.UploadFile(ctx, localFilePath, "sessions/"+sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload session file: %w", err)
	}

	allowed := []string{models.SessionConfirmed, models.SessionCompleted}
	if err := s.Sessions.SetSessionFile(ctx, sessionID, allowed, fileURL); err != nil {
		if errors.Is(err, repository.ErrNotMatched) {
			return nil, s.classifySessionFailure(ctx, sessionID, "attach file to")
		}
		return nil, fmt.Errorf("failed to attach session file: %w", err)
	}

	session.SessionFile = fileURL
	return session, nil
}

// GetSession fetches one session by id.
func (s *DefaultBookingService) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &NotFoundError{Entity: "session", ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}
	return session, nil
}

func (s *DefaultBookingService) ListUserSessions(ctx context.Context, userID string) ([]models.Session, error) {
	sessions, err := s.Sessions.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *DefaultBookingService) ListSpecialistSessions(ctx context.Context, specialistID string) ([]models.Session, error) {
	sessions, err := s.Sessions.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

func (s *DefaultBookingService) classifySessionFailure(ctx context.Context, sessionID, action string) error {
	session, err := s.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: "session", ID: sessionID}
	}
	if err != nil {
		return fmt.Errorf("failed to classify transition failure: %w", err)
	}
	if session.Status == models.SessionConfirmed {
		return &ConcurrentModificationError{Entity: "session", ID: sessionID}
	}
	return &InvalidStateError{Entity: "session", ID: sessionID, Current: session.Status, Action: action}
}
