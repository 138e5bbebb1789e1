package booking

import (
	"context"
	"fmt"
	"sort"

	"fikerless/models"
	"fikerless/utils"

	"go.uber.org/zap"
)

// AvailableSlots expands a specialist's recurring rules for one date into
// bookable slots, minus those held by confirmed sessions or live requests.
// Read-only; safe to call concurrently.
func (s *DefaultBookingService) AvailableSlots(ctx context.Context, specialistID, date string) ([]models.Slot, error) {
	day, err := parseDate(date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: fmt.Sprintf("invalid date %q, want YYYY-MM-DD", date)}
	}

	settings, err := s.getOrCreateSettings(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	loc := settings.Location()

	// Dates already behind the specialist's local today have nothing to book.
	now := s.Clock.Now().In(loc)
	today := now.Format(dateLayout)
	if date < today {
		return []models.Slot{}, nil
	}

	rules, err := s.Availability.GetActiveRulesForDay(ctx, specialistID, models.DayCode(day.Weekday()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability rules: %w", err)
	}
	if len(rules) == 0 {
		return nil, &NoAvailabilityError{SpecialistID: specialistID, Date: date}
	}

	candidates := expandRules(rules, settings.SlotDurationMinutes, settings.BreakMinutes)

	busy, err := s.busyRanges(ctx, specialistID, date)
	if err != nil {
		return nil, err
	}

	slots := make([]models.Slot, 0, len(candidates))
	for _, c := range candidates {
		blocked := false
		for _, b := range busy {
			if rangesOverlap(c.start, c.end, b.start, b.end) {
				blocked = true
				break
			}
		}
		if !blocked {
			slots = append(slots, models.Slot{
				StartTime: formatClock(c.start),
				EndTime:   formatClock(c.end),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartTime < slots[j].StartTime })
	return slots, nil
}

type minuteRange struct{ start, end int }

// expandRules walks each rule from start to end in steps of duration+break,
// emitting a slot whenever the full duration still fits. Rules are expanded
// independently; overlapping rules may produce overlapping slots.
func expandRules(rules []models.AvailabilityRule, durationMin, breakMin int) []minuteRange {
	logger := utils.GetLogger()
	step := durationMin + breakMin

	var out []minuteRange
	for _, rule := range rules {
		start, err := parseClock(rule.StartTime)
		if err != nil {
			logger.Warn("skipping rule with bad startTime",
				zap.String("ruleID", rule.ID), zap.Error(err))
			continue
		}
		end, err := parseClock(rule.EndTime)
		if err != nil {
			logger.Warn("skipping rule with bad endTime",
				zap.String("ruleID", rule.ID), zap.Error(err))
			continue
		}
		for t := start; t+durationMin <= end; t += step {
			out = append(out, minuteRange{start: t, end: t + durationMin})
		}
	}
	return out
}

// busyRanges collects the time ranges consumed by confirmed sessions and
// live (non-expired) pending requests on the given date.
func (s *DefaultBookingService) busyRanges(ctx context.Context, specialistID, date string) ([]minuteRange, error) {
	now := s.Clock.Now()

	sessions, err := s.Sessions.FindConfirmedByDate(ctx, specialistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}
	requests, err := s.Requests.FindActiveByDate(ctx, specialistID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session requests: %w", err)
	}

	var busy []minuteRange
	appendRange := func(startStr, endStr string) {
		start, err := parseClock(startStr)
		if err != nil {
			return
		}
		end, err := parseClock(endStr)
		if err != nil {
			return
		}
		busy = append(busy, minuteRange{start: start, end: end})
	}

	for _, sess := range sessions {
		appendRange(sess.StartTime, sess.EndTime)
	}
	for i := range requests {
		req := &requests[i]
		// A pending-payment request whose deadline has passed no longer
		// holds the slot; it self-heals to EXPIRED on next direct access.
		if req.PaymentExpired(now) {
			continue
		}
		appendRange(req.StartTime, req.EndTime)
	}
	return busy, nil
}
