package ingest

import "github.com/prosentry/prosentry/internal/risk"

// DemoSequence returns the canned escalation used when no CSV has
// been uploaded: a shift that drifts from a quiet morning into a
// fatigued, incident-heavy night.
func DemoSequence() []risk.Reading {
	return []risk.Reading{
		{WorkHours: 2, NearMissCount: 0, MachineUsage: "low", Shift: "day", Timestamp: "08:00"},
		{WorkHours: 4, NearMissCount: 1, MachineUsage: "normal", Shift: "day", Timestamp: "09:00"},
		{WorkHours: 6, NearMissCount: 2, MachineUsage: "normal", Shift: "day", Timestamp: "10:00"},
		{WorkHours: 8, NearMissCount: 3, MachineUsage: "high", Shift: "day", Timestamp: "11:00"},
		{WorkHours: 10, NearMissCount: 4, MachineUsage: "high", Shift: "night", Timestamp: "12:00"},
		{WorkHours: 12, NearMissCount: 5, MachineUsage: "high", Shift: "night", Timestamp: "13:00"},
		{WorkHours: 14, NearMissCount: 6, MachineUsage: "high", Shift: "night", Timestamp: "14:00"},
		{WorkHours: 15, NearMissCount: 8, MachineUsage: "high", Shift: "night", Timestamp: "15:00"},
	}
}
