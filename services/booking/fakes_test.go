package booking

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"fikerless/database/repository"
	sessionRepo "fikerless/database/repository/session"
	requestRepo "fikerless/database/repository/sessionrequest"
	"fikerless/models"
)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeAvailabilityRepo keeps rules and settings in memory.
type fakeAvailabilityRepo struct {
	mu       sync.Mutex
	rules    map[string][]models.AvailabilityRule
	settings map[string]models.AvailabilitySettings
}

func newFakeAvailabilityRepo() *fakeAvailabilityRepo {
	return &fakeAvailabilityRepo{
		rules:    make(map[string][]models.AvailabilityRule),
		settings: make(map[string]models.AvailabilitySettings),
	}
}

func (r *fakeAvailabilityRepo) GetRules(_ context.Context, specialistID string) ([]models.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.AvailabilityRule(nil), r.rules[specialistID]...), nil
}

func (r *fakeAvailabilityRepo) GetActiveRulesForDay(_ context.Context, specialistID, dayOfWeek string) ([]models.AvailabilityRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.AvailabilityRule
	for _, rule := range r.rules[specialistID] {
		if rule.DayOfWeek == dayOfWeek && rule.IsActive {
			out = append(out, rule)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *fakeAvailabilityRepo) ReplaceRules(_ context.Context, specialistID string, rules []models.AvailabilityRule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := make([]models.AvailabilityRule, len(rules))
	for i, rule := range rules {
		if rule.ID == "" {
			rule.ID = fmt.Sprintf("rule-%d", i)
		}
		rule.SpecialistID = specialistID
		stored[i] = rule
	}
	r.rules[specialistID] = stored
	return nil
}

func (r *fakeAvailabilityRepo) GetSettings(_ context.Context, specialistID string) (*models.AvailabilitySettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.settings[specialistID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &s, nil
}

func (r *fakeAvailabilityRepo) UpsertSettings(_ context.Context, settings *models.AvailabilitySettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings[settings.SpecialistID] = *settings
	return nil
}

// fakeRequestRepo mirrors the store-level behavior the service depends on:
// the partial unique index over active statuses and conditional transitions.
type fakeRequestRepo struct {
	mu       sync.Mutex
	requests map[string]models.SessionRequest
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]models.SessionRequest)}
}

func (r *fakeRequestRepo) Insert(_ context.Context, req *models.SessionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.requests {
		if !isActiveStatus(existing.Status) {
			continue
		}
		if existing.SpecialistID == req.SpecialistID && existing.Date == req.Date && existing.StartTime == req.StartTime {
			return repository.ErrDuplicateSlot
		}
	}
	if req.ID == "" {
		r.nextID++
		req.ID = fmt.Sprintf("req-%d", r.nextID)
	}
	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	r.requests[req.ID] = *req
	return nil
}

func isActiveStatus(status string) bool {
	for _, s := range models.ActiveRequestStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func (r *fakeRequestRepo) GetByID(_ context.Context, id string) (*models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &req, nil
}

func (r *fakeRequestRepo) FindActiveByDate(_ context.Context, specialistID, date string) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionRequest
	for _, req := range r.requests {
		if req.SpecialistID == specialistID && req.Date == date && isActiveStatus(req.Status) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) Transition(_ context.Context, id, fromStatus string, update requestRepo.RequestUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[id]
	if !ok || req.Status != fromStatus {
		return repository.ErrNotMatched
	}
	req.Status = update.Status
	if update.PaymentScreenshotURL != "" {
		req.PaymentScreenshotURL = update.PaymentScreenshotURL
	}
	if update.RejectionReason != "" {
		req.RejectionReason = update.RejectionReason
	}
	req.UpdatedAt = time.Now().UTC()
	r.requests[id] = req
	return nil
}

func (r *fakeRequestRepo) FindPendingPaymentExpiring(_ context.Context, from, to time.Time) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionRequest
	for _, req := range r.requests {
		if req.Status != models.RequestPendingPayment || req.ExpiresAt == nil {
			continue
		}
		if !req.ExpiresAt.Before(from) && !req.ExpiresAt.After(to) {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListByUser(_ context.Context, userID string) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionRequest
	for _, req := range r.requests {
		if req.UserID == userID {
			out = append(out, req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) ListBySpecialist(_ context.Context, specialistID string, statuses []string) ([]models.SessionRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.SessionRequest
	for _, req := range r.requests {
		if req.SpecialistID != specialistID {
			continue
		}
		if len(statuses) > 0 && !containsString(statuses, req.Status) {
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// fakeSessionRepo mirrors the unique indexes on sessions: the confirmed-slot
// tuple and the 1:1 request back-reference.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]models.Session
	nextID   int
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]models.Session)}
}

func (r *fakeSessionRepo) Insert(_ context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if session.SessionRequestID != "" && existing.SessionRequestID == session.SessionRequestID {
			return repository.ErrDuplicateRequestRef
		}
		if existing.Status == models.SessionConfirmed &&
			existing.SpecialistID == session.SpecialistID &&
			existing.Date == session.Date &&
			existing.StartTime == session.StartTime {
			return repository.ErrDuplicateSlot
		}
	}
	if session.ID == "" {
		r.nextID++
		session.ID = fmt.Sprintf("sess-%d", r.nextID)
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	r.sessions[session.ID] = *session
	return nil
}

func (r *fakeSessionRepo) GetByID(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &session, nil
}

func (r *fakeSessionRepo) FindConfirmedByDate(_ context.Context, specialistID, date string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, session := range r.sessions {
		if session.SpecialistID == specialistID && session.Date == date && session.Status == models.SessionConfirmed {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) Transition(_ context.Context, id, fromStatus string, update sessionRepo.SessionUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || session.Status != fromStatus {
		return repository.ErrNotMatched
	}
	session.Status = update.Status
	if update.Notes != "" {
		session.Notes = update.Notes
	}
	if update.CancellationReason != "" {
		session.CancellationReason = update.CancellationReason
	}
	if update.CompletedAt != nil {
		session.CompletedAt = update.CompletedAt
	}
	if update.CancelledAt != nil {
		session.CancelledAt = update.CancelledAt
	}
	session.UpdatedAt = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) SetSessionFile(_ context.Context, id string, allowedStatuses []string, fileURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[id]
	if !ok || !containsString(allowedStatuses, session.Status) {
		return repository.ErrNotMatched
	}
	session.SessionFile = fileURL
	session.UpdatedAt = time.Now().UTC()
	r.sessions[id] = session
	return nil
}

func (r *fakeSessionRepo) FindConfirmedStartingBetween(_ context.Context, from, to time.Time) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, session := range r.sessions {
		if session.Status != models.SessionConfirmed {
			continue
		}
		if !session.StartAt.Before(from) && !session.StartAt.After(to) {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, session := range r.sessions {
		if session.UserID == userID {
			out = append(out, session)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) ListBySpecialist(_ context.Context, specialistID string) ([]models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Session
	for _, session := range r.sessions {
		if session.SpecialistID == specialistID {
			out = append(out, session)
		}
	}
	return out, nil
}

// fakeStorage records uploads and hands back a deterministic URL.
type fakeStorage struct {
	mu      sync.Mutex
	uploads []string
	failErr error
}

func (s *fakeStorage) UploadFile(_ context.Context, localFilePath, destFolder string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return "", s.failErr
	}
	s.uploads = append(s.uploads, localFilePath)
	return "https://cdn.example.com/" + destFolder + "/file", nil
}

func (s *fakeStorage) DeleteFile(_ context.Context, publicID string) error {
	return nil
}

// newTestService wires a service over fresh fakes at the given time.
func newTestService(now time.Time) (*DefaultBookingService, *fakeAvailabilityRepo, *fakeRequestRepo, *fakeSessionRepo, *fakeClock) {
	avail := newFakeAvailabilityRepo()
	requests := newFakeRequestRepo()
	sessions := newFakeSessionRepo()
	clock := newFakeClock(now)
	svc := &DefaultBookingService{
		Availability:  avail,
		Requests:      requests,
		Sessions:      sessions,
		Storage:       &fakeStorage{},
		Clock:         clock,
		PaymentWindow: 30 * time.Minute,
	}
	return svc, avail, requests, sessions, clock
}
