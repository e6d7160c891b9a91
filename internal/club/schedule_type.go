package club

import "fmt"

// ScheduleType selects which schedule days are reported.
type ScheduleType string

const (
	// Planned reports every day with its officially posted times.
	Planned ScheduleType = "planned"
	// Real reports only days the organizer has marked live.
	Real ScheduleType = "real"
)

// LiveSharing is the upstream "sharing" value of a day that is live.
const LiveSharing = 3

// ScheduleTypes lists the accepted schedule types in display order.
var ScheduleTypes = []ScheduleType{Planned, Real}

// Description is a short human-readable label.
func (t ScheduleType) Description() string {
	switch t {
	case Planned:
		return "Scheduled time"
	case Real:
		return "Real-time schedule"
	default:
		return ""
	}
}

// ParseScheduleType accepts exactly "planned" or "real".
func ParseScheduleType(s string) (ScheduleType, error) {
	switch t := ScheduleType(s); t {
	case Planned, Real:
		return t, nil
	default:
		return "", fmt.Errorf("unknown schedule type %q", s)
	}
}

// IncludesDay reports whether a day with the given sharing flag belongs in a
// schedule of this type. A nil flag means the upstream omitted it.
func (t ScheduleType) IncludesDay(sharing *float64) bool {
	if t != Real {
		return true
	}
	return sharing != nil && *sharing == LiveSharing
}
