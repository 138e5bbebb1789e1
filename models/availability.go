package models

import "time"

// Days of week as stored on availability rules.
const (
	DayMonday    = "MON"
	DayTuesday   = "TUE"
	DayWednesday = "WED"
	DayThursday  = "THU"
	DayFriday    = "FRI"
	DaySaturday  = "SAT"
	DaySunday    = "SUN"
)

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    DayMonday,
	time.Tuesday:   DayTuesday,
	time.Wednesday: DayWednesday,
	time.Thursday:  DayThursday,
	time.Friday:    DayFriday,
	time.Saturday:  DaySaturday,
	time.Sunday:    DaySunday,
}

// DayCode returns the stored day-of-week code for a weekday.
func DayCode(d time.Weekday) string {
	return weekdayCodes[d]
}

// IsValidDayCode reports whether s is one of the seven day codes.
func IsValidDayCode(s string) bool {
	for _, code := range weekdayCodes {
		if code == s {
			return true
		}
	}
	return false
}

// AvailabilityRule is one recurring weekly working window for a specialist.
// A specialist may hold several rules per day; rules with IsActive false are
// ignored by slot generation.
type AvailabilityRule struct {
	ID           string `bson:"id" json:"id"`
	SpecialistID string `bson:"specialistId" json:"specialistId"`
	DayOfWeek    string `bson:"dayOfWeek" json:"dayOfWeek"`
	StartTime    string `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime      string `bson:"endTime" json:"endTime"`     // "HH:mm"
	IsActive     bool   `bson:"isActive" json:"isActive"`
}

// Defaults applied when a specialist has no settings row yet.
const (
	DefaultSlotDurationMinutes = 60
	DefaultBreakMinutes        = 15
	DefaultTimezone            = "Asia/Karachi"
	MinSlotDurationMinutes     = 15
)

// AvailabilitySettings holds per-specialist slot sizing. One row per
// specialist, created lazily with defaults on first access.
type AvailabilitySettings struct {
	SpecialistID        string    `bson:"specialistId" json:"specialistId"`
	SlotDurationMinutes int       `bson:"slotDurationMinutes" json:"slotDurationMinutes"`
	BreakMinutes        int       `bson:"breakMinutes" json:"breakMinutes"`
	Timezone            string    `bson:"timezone" json:"timezone"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// DefaultAvailabilitySettings returns the lazily-created settings row.
func DefaultAvailabilitySettings(specialistID string) AvailabilitySettings {
	return AvailabilitySettings{
		SpecialistID:        specialistID,
		SlotDurationMinutes: DefaultSlotDurationMinutes,
		BreakMinutes:        DefaultBreakMinutes,
		Timezone:            DefaultTimezone,
	}
}

// Location resolves the settings timezone, falling back to the default zone
// when the stored string does not parse.
func (s AvailabilitySettings) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc, err = time.LoadLocation(DefaultTimezone)
		if err != nil {
			return time.UTC
		}
	}
	return loc
}
