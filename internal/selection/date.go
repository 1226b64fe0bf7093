package selection

import "time"

const DefaultDateLayout = "2006-01-02"

// ResolveTargetDate picks the remote date to fetch for a run started on
// today. Monday goes back two days; every other day targets the previous
// day. The result has no time component.
func ResolveTargetDate(today time.Time) time.Time {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	switch day.Weekday() {
	case time.Monday:
		return day.AddDate(0, 0, -2)
	case time.Tuesday:
		return day.AddDate(0, 0, -1)
	default:
		return day.AddDate(0, 0, -1)
	}
}

func reason(today time.Time) string {
	switch today.Weekday() {
	case time.Monday:
		return "monday, going back two days"
	case time.Tuesday:
		return "tuesday, fetching monday's files"
	default:
		return "fetching the previous day's files"
	}
}
