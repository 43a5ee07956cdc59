// Package datekey converts wall-clock instants into calendar-day keys.
//
// Local ledger keys use YYYY-MM-DD in the local timezone. The spreadsheet
// backend keys rows by DD-MM-YYYY; Remote bridges the two.
package datekey

import (
	"fmt"
	"time"

	"github.com/sadopc/lunafocus/internal/clock"
)

const (
	localLayout  = "2006-01-02"
	remoteLayout = "02-01-2006"
)

// Key is a local calendar-day identifier such as "2024-03-09".
type Key string

// FromTime returns the key of the local calendar day containing t.
func FromTime(t time.Time) Key {
	return Key(t.In(time.Local).Format(localLayout))
}

// Today returns the key for the current local day according to c.
func Today(c clock.Clock) Key {
	return FromTime(c.Now())
}

// Parse validates s as a local date key.
func Parse(s string) (Key, error) {
	if _, err := time.ParseInLocation(localLayout, s, time.Local); err != nil {
		return "", fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return Key(s), nil
}

func (k Key) String() string { return string(k) }

// Time returns local midnight of the day k names. Invalid keys yield the
// zero time.
func (k Key) Time() time.Time {
	t, err := time.ParseInLocation(localLayout, string(k), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the key n calendar days after k (n may be negative).
func (k Key) AddDays(n int) Key {
	t := k.Time()
	if t.IsZero() {
		return k
	}
	return FromTime(t.AddDate(0, 0, n))
}

// Remote returns the spreadsheet form of k, e.g. "09-03-2024".
func (k Key) Remote() string {
	t := k.Time()
	if t.IsZero() {
		return ""
	}
	return t.Format(remoteLayout)
}

// FromRemote converts a spreadsheet DD-MM-YYYY key back to a local key.
func FromRemote(s string) (Key, error) {
	t, err := time.ParseInLocation(remoteLayout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("invalid remote date %q (want DD-MM-YYYY): %w", s, err)
	}
	return Key(t.Format(localLayout)), nil
}

// Range returns the n keys ending at (and including) end, oldest first.
func Range(end Key, n int) []Key {
	if n <= 0 {
		return nil
	}
	keys := make([]Key, n)
	for i := 0; i < n; i++ {
		keys[i] = end.AddDays(i - n + 1)
	}
	return keys
}
