package conversations

import (
	"strings"
	"time"

	"github.com/arihantchoudhary/sasha-pilots/internal/elevenlabs"
)

// Selector values shared by the status, agent, success, and date criteria.
const (
	SelectAll = "all"

	DateToday = "today"
	DateWeek  = "week"
	DateMonth = "month"

	ViewAll    = "all"
	ViewLatest = "latest"
)

// Date windows in seconds.
const (
	windowDay   = 86400
	windowWeek  = 7 * 86400
	windowMonth = 30 * 86400
)

// Criteria is the full set of list filters. All criteria combine by logical
// AND, except ViewLatest which overrides everything else.
type Criteria struct {
	Search    string
	Status    string
	Agent     string
	Success   string
	DateRange string
	ViewMode  string
}

// Filter maps (list, criteria) to the visible subset. It is pure: same inputs
// always produce the same output, and the input slice is never mutated.
func Filter(list []elevenlabs.Conversation, c Criteria, now time.Time) []elevenlabs.Conversation {
	if c.ViewMode == ViewLatest {
		return latest(list)
	}

	cutoff, bounded := dateCutoff(c.DateRange, now)
	search := strings.ToLower(strings.TrimSpace(c.Search))

	out := make([]elevenlabs.Conversation, 0, len(list))
	for _, conv := range list {
		if search != "" &&
			!strings.Contains(strings.ToLower(conv.CallSummaryTitle), search) &&
			!strings.Contains(strings.ToLower(conv.AgentName), search) {
			continue
		}
		if !selectorMatch(c.Status, conv.Status) {
			continue
		}
		if !selectorMatch(c.Agent, conv.AgentName) {
			continue
		}
		if !selectorMatch(c.Success, conv.CallSuccessful) {
			continue
		}
		if bounded && conv.StartTimeUnixSecs < cutoff {
			continue
		}
		out = append(out, conv)
	}
	return out
}

// latest returns at most one element: the one with the maximum start time.
func latest(list []elevenlabs.Conversation) []elevenlabs.Conversation {
	if len(list) == 0 {
		return nil
	}
	best := list[0]
	for _, conv := range list[1:] {
		if conv.StartTimeUnixSecs > best.StartTimeUnixSecs {
			best = conv
		}
	}
	return []elevenlabs.Conversation{best}
}

func selectorMatch(selector, value string) bool {
	return selector == "" || selector == SelectAll || selector == value
}

// dateCutoff returns the inclusive lower bound for start times. A conversation
// starting exactly at the cutoff instant is kept.
func dateCutoff(dateRange string, now time.Time) (int64, bool) {
	var window int64
	switch dateRange {
	case DateToday:
		window = windowDay
	case DateWeek:
		window = windowWeek
	case DateMonth:
		window = windowMonth
	default:
		return 0, false
	}
	return now.Unix() - window, true
}
