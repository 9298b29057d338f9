package ledger

import (
	"encoding/json"
	"time"
)

// TimeLayout is the only persisted representation of a timestamp.
const TimeLayout = "2006-01-02 15:04:05"

// FormatTime encodes t in UTC at second precision.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime decodes a timestamp written by FormatTime.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

// Truncate drops everything below whole seconds so that a value survives a
// FormatTime/ParseTime round trip unchanged.
func Truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// Timestamp is a time.Time that marshals to JSON in TimeLayout.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatTime(t.Time))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}

	t.Time = parsed
	return nil
}
