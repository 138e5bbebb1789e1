package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fikerless/config"
	"fikerless/database/repository"
	"fikerless/models"
	"fikerless/utils"

	"go.uber.org/zap"
)

// GetAvailability returns a specialist's rules together with their settings,
// creating the settings row with defaults on first access.
func (s *DefaultBookingService) GetAvailability(ctx context.Context, specialistID string) (*AvailabilityView, error) {
	rules, err := s.Availability.GetRules(ctx, specialistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch availability rules: %w", err)
	}
	settings, err := s.getOrCreateSettings(ctx, specialistID)
	if err != nil {
		return nil, err
	}
	return &AvailabilityView{Rules: rules, Settings: *settings}, nil
}

// getOrCreateSettings loads the specialist's settings, persisting a default
// row when none exists yet.
func (s *DefaultBookingService) getOrCreateSettings(ctx context.Context, specialistID string) (*models.AvailabilitySettings, error) {
	settings, err := s.Availability.GetSettings(ctx, specialistID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to fetch availability settings: %w", err)
	}

	defaults := models.DefaultAvailabilitySettings(specialistID)
	if tz := config.AppConfig.DefaultTimezone; tz != "" {
		if _, err := time.LoadLocation(tz); err == nil {
			defaults.Timezone = tz
		} else {
			utils.GetLogger().Warn("ignoring unloadable DEFAULT_TIMEZONE",
				zap.String("timezone", tz), zap.Error(err))
		}
	}
	if err := s.Availability.UpsertSettings(ctx, &defaults); err != nil {
		return nil, fmt.Errorf("failed to persist default settings: %w", err)
	}
	utils.GetLogger().Info("created default availability settings",
		zap.String("specialistID", specialistID))
	return &defaults, nil
}

// SetRules validates and replaces a specialist's weekly rule set. Active
// rules on the same day must not overlap.
func (s *DefaultBookingService) SetRules(ctx context.Context, specialistID string, rules []models.AvailabilityRule) error {
	type window struct{ start, end int }
	perDay := make(map[string][]window)

	for i := range rules {
		rule := &rules[i]
		if !models.IsValidDayCode(rule.DayOfWeek) {
			return &ValidationError{Field: "dayOfWeek", Message: fmt.Sprintf("unknown day %q", rule.DayOfWeek)}
		}
		start, err := parseClock(rule.StartTime)
		if err != nil {
			return &ValidationError{Field: "startTime", Message: err.Error()}
		}
		end, err := parseClock(rule.EndTime)
		if err != nil {
			return &ValidationError{Field: "endTime", Message: err.Error()}
		}
		if start >= end {
			return &ValidationError{Field: "startTime", Message: "startTime must be before endTime"}
		}
		if !rule.IsActive {
			continue
		}
		for _, w := range perDay[rule.DayOfWeek] {
			if rangesOverlap(start, end, w.start, w.end) {
				return &ValidationError{
					Field:   "rules",
					Message: fmt.Sprintf("overlapping active rules on %s", rule.DayOfWeek),
				}
			}
		}
		perDay[rule.DayOfWeek] = append(perDay[rule.DayOfWeek], window{start, end})
	}

	if err := s.Availability.ReplaceRules(ctx, specialistID, rules); err != nil {
		return fmt.Errorf("failed to replace availability rules: %w", err)
	}
	return nil
}

// UpdateSettings validates and stores slot sizing for a specialist.
func (s *DefaultBookingService) UpdateSettings(ctx context.Context, specialistID string, slotDuration, breakMinutes int, timezone string) (*models.AvailabilitySettings, error) {
	if slotDuration < models.MinSlotDurationMinutes {
		return nil, &ValidationError{
			Field:   "slotDurationMinutes",
			Message: fmt.Sprintf("must be at least %d", models.MinSlotDurationMinutes),
		}
	}
	if breakMinutes < 0 {
		return nil, &ValidationError{Field: "breakMinutes", Message: "must not be negative"}
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return nil, &ValidationError{Field: "timezone", Message: fmt.Sprintf("unknown timezone %q", timezone)}
	}

	settings := models.AvailabilitySettings{
		SpecialistID:        specialistID,
		SlotDurationMinutes: slotDuration,
		BreakMinutes:        breakMinutes,
		Timezone:            timezone,
	}
	if err := s.Availability.UpsertSettings(ctx, &settings); err != nil {
		return nil, fmt.Errorf("failed to update availability settings: %w", err)
	}
	return &settings, nil
}
