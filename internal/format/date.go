package format

import "time"

const (
	isoDate     = "2006-01-02"
	displayDate = "02/01/2006"
)

// Date renders an ISO date or datetime as dd/mm/yyyy. Only the calendar part
// is read, so no timezone shift can move the day. Empty input renders "-";
// anything unparseable is returned as received.
func Date(s string) string {
	if s == "" {
		return "-"
	}
	if len(s) < len(isoDate) {
		return s
	}
	t, err := time.Parse(isoDate, s[:len(isoDate)])
	if err != nil {
		return s
	}
	return t.Format(displayDate)
}

// ISODate is the wire format the API expects for dates.
func ISODate(t time.Time) string {
	return t.Format(isoDate)
}

// ParseDisplayDate accepts either dd/mm/yyyy or yyyy-mm-dd and returns the ISO form.
func ParseDisplayDate(s string) (string, bool) {
	if t, err := time.Parse(isoDate, s); err == nil {
		return ISODate(t), true
	}
	if t, err := time.Parse(displayDate, s); err == nil {
		return ISODate(t), true
	}
	return "", false
}
