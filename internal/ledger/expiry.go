package ledger

import "time"

const day = 24 * time.Hour

// AddDays moves t forward by whole days. Ledger times are UTC, so a day is
// always 24 hours.
func AddDays(t time.Time, days uint32) time.Time {
	return t.AddDate(0, 0, int(days))
}

// RenewedExpiry returns max(now, expire) + days. A client renewed early keeps
// its remaining time; one renewed after expiry counts from now.
func RenewedExpiry(now, expire time.Time, days uint32) time.Time {
	base := expire
	if now.After(expire) {
		base = now
	}
	return Truncate(AddDays(base, days))
}

// DaysLeft returns the whole days between now and expire, negative once the
// client has expired.
func DaysLeft(now, expire time.Time) int {
	return wholeDays(expire, now)
}

// DaysSinceExpiry returns the whole days elapsed since expire, zero or
// negative while the client is still active.
func DaysSinceExpiry(now, expire time.Time) int {
	return wholeDays(now, expire)
}

// wholeDays counts days from b to a in Unix seconds, since time.Sub
// saturates at about 292 years.
func wholeDays(a, b time.Time) int {
	return int((a.Unix() - b.Unix()) / int64(day/time.Second))
}
