package reminder

import (
	"context"
	"fmt"
	"sync"
	"time"

	sessionRepo "fikerless/database/repository/session"
	requestRepo "fikerless/database/repository/sessionrequest"
	"fikerless/models"
	"fikerless/services/notification"
	"fikerless/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scan cadences and window tolerances. Each scan's period is small relative
// to its window's tolerance, so a reminder missed by one tick (or a sink
// failure) is picked up by a later tick while still in-window.
const (
	dailyScanEvery   = 30 * time.Minute
	hourlyScanEvery  = 15 * time.Minute
	paymentScanEvery = 2 * time.Minute
	ledgerPurgeEvery = 24 * time.Hour

	sessionWindowTolerance = 5 * time.Minute
	paymentLead            = 5 * time.Minute
	paymentTolerance       = 2 * time.Minute

	batchSize          = 100
	maxConcurrentSends = 100
	sendTimeout        = 10 * time.Second
)

// Scheduler is the continuously-running reminder loop. It only reads
// session and request state; its sole mutations are its own ledger and the
// notification sink. Instantiable with an independent ledger per instance.
type Scheduler struct {
	Sessions sessionRepo.SessionRepository
	Requests requestRepo.SessionRequestRepository
	Sink     notification.NotificationSink
	Clock    utils.Clock

	ledger *Ledger
	cron   *cron.Cron
	sends  sync.WaitGroup
}

// NewScheduler constructs a stopped scheduler with a fresh ledger.
func NewScheduler(
	sessions sessionRepo.SessionRepository,
	requests requestRepo.SessionRequestRepository,
	sink notification.NotificationSink,
	clock utils.Clock,
) *Scheduler {
	return &Scheduler{
		Sessions: sessions,
		Requests: requests,
		Sink:     sink,
		Clock:    clock,
		ledger:   NewLedger(),
	}
}

// Start registers the periodic scans and begins ticking. Overlapping runs
// of the same scan are skipped rather than stacked.
func (s *Scheduler) Start() {
	logger := utils.GetLogger()
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))

	mustAdd := func(spec string, fn func()) {
		if _, err := s.cron.AddFunc(spec, fn); err != nil {
			logger.Fatal("failed to register reminder scan", zap.String("spec", spec), zap.Error(err))
		}
	}
	mustAdd(fmt.Sprintf("@every %s", dailyScanEvery), s.RunDailyScan)
	mustAdd(fmt.Sprintf("@every %s", hourlyScanEvery), s.RunHourlyScan)
	mustAdd(fmt.Sprintf("@every %s", paymentScanEvery), s.RunPaymentScan)
	mustAdd(fmt.Sprintf("@every %s", ledgerPurgeEvery), s.purgeLedger)

	s.cron.Start()
	logger.Info("reminder scheduler started")
}

// Stop halts the timers and waits for in-flight sends to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	logger := utils.GetLogger()
	if s.cron != nil {
		cronCtx := s.cron.Stop()
		select {
		case <-cronCtx.Done():
		case <-ctx.Done():
			logger.Warn("reminder scheduler stop timed out waiting for running scans")
			return
		}
	}

	done := make(chan struct{})
	go func() {
		s.sends.Wait()
		close(done)
	}()
	select {
	case <-done:
		logger.Info("reminder scheduler stopped")
	case <-ctx.Done():
		logger.Warn("reminder scheduler stop timed out waiting for in-flight sends")
	}
}

// RunDailyScan reminds both parties of sessions starting in ~24 hours.
func (s *Scheduler) RunDailyScan() {
	s.scanSessions(Window24H, 24*time.Hour, false, func(sess *models.Session) (string, string) {
		title := "Session tomorrow"
		body := fmt.Sprintf("Your session on %s at %s is 24 hours away.", sess.Date, sess.StartTime)
		return title, body
	})
}

// RunHourlyScan reminds both parties of sessions starting in ~1 hour,
// skipping anything that was cancelled.
func (s *Scheduler) RunHourlyScan() {
	s.scanSessions(Window1H, time.Hour, true, func(sess *models.Session) (string, string) {
		title := "Session starting soon"
		body := fmt.Sprintf("Your session starts at %s, in about an hour.", sess.StartTime)
		return title, body
	})
}

func (s *Scheduler) scanSessions(w Window, lead time.Duration, skipCancelled bool, msg func(*models.Session) (string, string)) {
	logger := utils.GetLogger()
	now := s.Clock.Now()
	from := now.Add(lead - sessionWindowTolerance)
	to := now.Add(lead + sessionWindowTolerance)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	sessions, err := s.Sessions.FindConfirmedStartingBetween(ctx, from, to)
	if err != nil {
		logger.Error("reminder scan query failed", zap.String("window", string(w)), zap.Error(err))
		return
	}

	for start := 0; start < len(sessions); start += batchSize {
		end := start + batchSize
		if end > len(sessions) {
			end = len(sessions)
		}
		s.remindSessionBatch(sessions[start:end], w, skipCancelled, msg)
	}
}

// remindSessionBatch fans out one send per recipient in parallel, joins on
// completion, and records a ledger entry for each session that had at least
// one successful send. A single failed send never aborts the batch; the
// next scan's tolerance acts as the retry.
func (s *Scheduler) remindSessionBatch(batch []models.Session, w Window, skipCancelled bool, msg func(*models.Session) (string, string)) {
	logger := utils.GetLogger()

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentSends)
	var mu sync.Mutex
	delivered := make(map[string]bool)

	for i := range batch {
		sess := &batch[i]
		if skipCancelled && sess.CancelledAt != nil {
			continue
		}
		if s.ledger.Seen(sess.ID, w) {
			continue
		}
		title, body := msg(sess)
		data := map[string]string{
			"sessionId": sess.ID,
			"date":      sess.Date,
			"startTime": sess.StartTime,
		}

		for _, recipient := range []string{sess.UserID, sess.SpecialistID} {
			wg.Add(1)
			s.sends.Add(1)
			go func(sessionID, recipient string) {
				defer wg.Done()
				defer s.sends.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
				defer cancel()
				if err := s.Sink.Send(ctx, recipient, title, body, "session_reminder", data); err != nil {
					logger.Warn("reminder send failed",
						zap.String("sessionID", sessionID),
						zap.String("recipientID", recipient),
						zap.String("window", string(w)),
						zap.Error(err))
					return
				}
				mu.Lock()
				delivered[sessionID] = true
				mu.Unlock()
			}(sess.ID, recipient)
		}
	}
	wg.Wait()

	for id := range delivered {
		s.ledger.Record(id, w)
	}
}

// RunPaymentScan warns requesters whose payment deadline is ~5 minutes out.
func (s *Scheduler) RunPaymentScan() {
	logger := utils.GetLogger()
	now := s.Clock.Now()
	from := now.Add(paymentLead - paymentTolerance)
	to := now.Add(paymentLead + paymentTolerance)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	requests, err := s.Requests.FindPendingPaymentExpiring(ctx, from, to)
	if err != nil {
		logger.Error("payment-expiry scan query failed", zap.Error(err))
		return
	}

	for start := 0; start < len(requests); start += batchSize {
		end := start + batchSize
		if end > len(requests) {
			end = len(requests)
		}
		s.remindPaymentBatch(requests[start:end])
	}
}

func (s *Scheduler) remindPaymentBatch(batch []models.SessionRequest) {
	logger := utils.GetLogger()

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentSends)

	for i := range batch {
		req := &batch[i]
		if s.ledger.Seen(req.ID, WindowPayment5M) {
			continue
		}

		wg.Add(1)
		s.sends.Add(1)
		go func(req *models.SessionRequest) {
			defer wg.Done()
			defer s.sends.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			title := "Payment deadline approaching"
			body := fmt.Sprintf("Your booking for %s at %s expires in 5 minutes. Submit your payment to keep the slot.", req.Date, req.StartTime)
			data := map[string]string{
				"requestId": req.ID,
				"date":      req.Date,
				"startTime": req.StartTime,
			}

			ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
			defer cancel()
			if err := s.Sink.Send(ctx, req.UserID, title, body, "payment_reminder", data); err != nil {
				logger.Warn("payment reminder send failed",
					zap.String("requestID", req.ID),
					zap.Error(err))
				return
			}
			s.ledger.Record(req.ID, WindowPayment5M)
		}(req)
	}
	wg.Wait()
}

func (s *Scheduler) purgeLedger() {
	size := s.ledger.Size()
	s.ledger.Purge()
	utils.GetLogger().Info("reminder ledger purged", zap.Int("entries", size))
}
