// Package projection builds day-by-day timelines from ordered messages.
// Handles calendar grouping and ordering only.
// Does not render documents or touch storage.
package projection

import (
	"chat-archiver/domain"
	"sort"
	"time"
)

// DayGroup holds every message sent on one calendar date.
type DayGroup struct {
	Date     time.Time
	Messages []domain.ChatMessage
}

// GroupByDay groups on the date component of each timestamp, in the
// timestamp's own location. Groups are ascending by date and messages keep
// their input order inside a group.
func GroupByDay(messages []domain.ChatMessage) []DayGroup {
	index := map[time.Time]int{}
	var groups []DayGroup
	for _, m := range messages {
		day := truncateToDay(m.Timestamp())
		position, ok := index[day]
		if !ok {
			position = len(groups)
			index[day] = position
			groups = append(groups, DayGroup{Date: day})
		}
		groups[position].Messages = append(groups[position].Messages, m)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.Before(groups[j].Date)
	})
	return groups
}

func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
