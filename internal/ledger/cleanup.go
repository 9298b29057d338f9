package ledger

import "time"

// DefaultGraceDays is how long a client may stay expired before Cleanup
// removes it.
const DefaultGraceDays = 5

// Cleanup removes every client that expired at least graceDays whole days
// before now and returns their names in listing order. It stops at the first
// failure; the session is expected to be discarded in that case.
func Cleanup(db Database, now time.Time, graceDays int) ([]string, error) {
	clients, err := db.ListClients()
	if err != nil {
		return nil, err
	}

	var removed []string
	for _, c := range clients {
		if DaysSinceExpiry(now, c.ExpireTime) < graceDays {
			continue
		}

		if err := db.RemoveClient(c.Name); err != nil {
			return removed, err
		}
		removed = append(removed, c.Name)
	}

	return removed, nil
}
