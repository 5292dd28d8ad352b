package alarm

import (
	"rtcalarm-go/types"
	"rtcalarm-go/x/conv"
)

// FormatTimestamp renders a timestamp as a single diagnostic line in the
// form "2 3-11-24  9:07:05": weekday, then day-month-year, then the time of
// day. Only minutes and seconds are zero-padded, so the hour column floats
// and the two spaces before a single-digit hour are intentional.
func FormatTimestamp(ts types.Timestamp) string {
	buf := make([]byte, 0, 24)
	buf = conv.Itoa(buf, int64(ts.Weekday))
	buf = append(buf, ' ')
	buf = conv.Itoa(buf, int64(ts.Day))
	buf = append(buf, '-')
	buf = conv.Itoa(buf, int64(ts.Month))
	buf = append(buf, '-')
	buf = conv.Itoa(buf, int64(ts.Year))
	buf = append(buf, ' ', ' ')
	buf = conv.Itoa(buf, int64(ts.Hours))
	buf = append(buf, ':')
	buf = conv.Pad2(buf, ts.Minutes)
	buf = append(buf, ':')
	buf = conv.Pad2(buf, ts.Seconds)
	return string(buf)
}
