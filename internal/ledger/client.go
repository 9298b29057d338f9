// Package ledger defines the client ledger: its data model, the Database
// contract every storage backend implements, and the expiry arithmetic the
// backends share.
package ledger

import "time"

// Client is one subscriber. Name is unique across the ledger and Payments is
// never empty once the client exists.
type Client struct {
	Name       string
	ExpireTime time.Time
	Payments   []Payment
	Info       *string
}

// Payment is one recorded payment event.
type Payment struct {
	Seller string
	Money  uint32
	Date   time.Time
}

// InfoOrEmpty returns the client's info, or "" when none was ever set.
func (c Client) InfoOrEmpty() string {
	if c.Info == nil {
		return ""
	}
	return *c.Info
}

// LastPayment returns the most recent payment and false if there is none.
func (c Client) LastPayment() (Payment, bool) {
	if len(c.Payments) == 0 {
		return Payment{}, false
	}
	return c.Payments[len(c.Payments)-1], true
}

// IsExpired reports whether the subscription ended before now.
func (c Client) IsExpired(now time.Time) bool {
	return c.ExpireTime.Before(now)
}

// NewClient builds a client that starts now and runs for days, with the
// initial payment dated now.
func NewClient(now time.Time, name string, days uint32, seller string, money uint32, info string) Client {
	now = Truncate(now)
	return Client{
		Name:       name,
		ExpireTime: AddDays(now, days),
		Payments:   []Payment{{Seller: seller, Money: money, Date: now}},
		Info:       &info,
	}
}
