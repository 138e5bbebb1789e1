package models

// Slot is a fixed-duration candidate booking window derived from
// availability rules, expressed as "HH:mm" strings.
type Slot struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}
