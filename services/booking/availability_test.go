package booking

import (
	"context"
	"errors"
	"testing"

	"fikerless/config"
	"fikerless/models"
)

func TestGetAvailability_CreatesDefaultSettings(t *testing.T) {
	svc, _, _, _, _ := newTestService(testNow)

	view, err := svc.GetAvailability(context.Background(), "spec-1")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if view.Settings.SlotDurationMinutes != models.DefaultSlotDurationMinutes {
		t.Fatalf("want default duration %d, got %d", models.DefaultSlotDurationMinutes, view.Settings.SlotDurationMinutes)
	}
	if view.Settings.Timezone != models.DefaultTimezone {
		t.Fatalf("want default timezone %s, got %s", models.DefaultTimezone, view.Settings.Timezone)
	}
}

func TestGetAvailability_ConfiguredDefaultTimezone(t *testing.T) {
	config.AppConfig.DefaultTimezone = "Europe/London"
	defer func() { config.AppConfig.DefaultTimezone = "" }()

	svc, _, _, _, _ := newTestService(testNow)
	view, err := svc.GetAvailability(context.Background(), "spec-1")
	if err != nil {
		t.Fatalf("GetAvailability: %v", err)
	}
	if view.Settings.Timezone != "Europe/London" {
		t.Fatalf("want configured default timezone Europe/London, got %s", view.Settings.Timezone)
	}
}

func TestSetRules_ReplacesRuleSet(t *testing.T) {
	svc, avail, _, _, _ := newTestService(testNow)

	err := svc.SetRules(context.Background(), "spec-1", []models.AvailabilityRule{
		mondayRule("09:00", "11:00"),
		{DayOfWeek: models.DayTuesday, StartTime: "14:00", EndTime: "17:00", IsActive: true},
	})
	if err != nil {
		t.Fatalf("SetRules: %v", err)
	}

	rules, err := avail.GetRules(context.Background(), "spec-1")
	if err != nil {
		t.Fatalf("GetRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("want 2 rules stored, got %d", len(rules))
	}

	// A second call fully replaces the set.
	if err := svc.SetRules(context.Background(), "spec-1", []models.AvailabilityRule{mondayRule("10:00", "12:00")}); err != nil {
		t.Fatalf("second SetRules: %v", err)
	}
	rules, _ = avail.GetRules(context.Background(), "spec-1")
	if len(rules) != 1 || rules[0].StartTime != "10:00" {
		t.Fatalf("want replaced rule set, got %+v", rules)
	}
}

func TestSetRules_Validation(t *testing.T) {
	svc, _, _, _, _ := newTestService(testNow)

	cases := []struct {
		name  string
		rules []models.AvailabilityRule
	}{
		{"unknown day", []models.AvailabilityRule{{DayOfWeek: "MONDAY", StartTime: "09:00", EndTime: "11:00", IsActive: true}}},
		{"bad start", []models.AvailabilityRule{{DayOfWeek: models.DayMonday, StartTime: "9am", EndTime: "11:00", IsActive: true}}},
		{"start after end", []models.AvailabilityRule{{DayOfWeek: models.DayMonday, StartTime: "11:00", EndTime: "09:00", IsActive: true}}},
		{"overlapping active rules", []models.AvailabilityRule{
			mondayRule("09:00", "11:00"),
			mondayRule("10:00", "12:00"),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.SetRules(context.Background(), "spec-1", tc.rules)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}
}

func TestSetRules_InactiveRulesMayOverlap(t *testing.T) {
	svc, _, _, _, _ := newTestService(testNow)

	inactive := mondayRule("09:00", "11:00")
	inactive.IsActive = false
	err := svc.SetRules(context.Background(), "spec-1", []models.AvailabilityRule{
		mondayRule("09:00", "11:00"),
		inactive,
	})
	if err != nil {
		t.Fatalf("inactive overlap should be allowed: %v", err)
	}
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _, _, _ := newTestService(testNow)

	settings, err := svc.UpdateSettings(context.Background(), "spec-1", 45, 10, "Europe/London")
	if err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	if settings.SlotDurationMinutes != 45 || settings.BreakMinutes != 10 {
		t.Fatalf("want 45/10, got %d/%d", settings.SlotDurationMinutes, settings.BreakMinutes)
	}

	cases := []struct {
		name     string
		duration int
		brk      int
		tz       string
	}{
		{"duration too small", 10, 0, "Asia/Karachi"},
		{"negative break", 60, -5, "Asia/Karachi"},
		{"bad timezone", 60, 0, "Mars/Olympus"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.UpdateSettings(context.Background(), "spec-1", tc.duration, tc.brk, tc.tz)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("want ValidationError, got %v", err)
			}
		})
	}
}
