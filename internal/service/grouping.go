package service

import (
	"fmt"
	"time"

	"github.com/fall-line/lifelens/internal/domain"
)

// MessageGroup is one calendar day's worth of messages, in original order.
type MessageGroup struct {
	Date     time.Time
	Messages []domain.Message
}

// GroupMessagesByDate partitions messages by calendar date. Groups appear
// in first-seen order and messages keep their relative order within a
// group, so grouping an already ordered transcript is stable. A message
// without a timestamp counts as today (now's date).
func GroupMessagesByDate(msgs []domain.Message, now time.Time) []MessageGroup {
	var groups []MessageGroup
	index := make(map[string]int)

	for _, m := range msgs {
		ts := m.Timestamp
		if ts.IsZero() {
			ts = now
		}
		day := ts.Format(time.DateOnly)

		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, MessageGroup{
				Date: time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location()),
			})
		}
		groups[i].Messages = append(groups[i].Messages, m)
	}
	return groups
}

// FormatDateLabel renders a group header: "Today · Monday",
// "Yesterday · Sunday", or the full date for anything older.
func FormatDateLabel(date, now time.Time) string {
	switch {
	case sameCalendarDay(date, now):
		return fmt.Sprintf("Today · %s", date.Weekday())
	case sameCalendarDay(date, now.AddDate(0, 0, -1)):
		return fmt.Sprintf("Yesterday · %s", date.Weekday())
	default:
		return date.Format("Monday, January 2, 2006")
	}
}

func sameCalendarDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
