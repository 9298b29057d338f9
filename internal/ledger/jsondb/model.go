package jsondb

import "github.com/Soar-Robotics/ClientLedger/internal/ledger"

// clientRecord is the persisted form of a client. The file holds a JSON
// array of these, each carrying its own payments.
type clientRecord struct {
	Name       string           `json:"name"`
	ExpireTime ledger.Timestamp `json:"expire_time"`
	Payments   []paymentRecord  `json:"payments"`
	Info       *string          `json:"info"`
}

type paymentRecord struct {
	Seller string           `json:"seller"`
	Money  uint32           `json:"money"`
	Date   ledger.Timestamp `json:"date"`
}

func toRecords(clients []ledger.Client) []clientRecord {
	out := make([]clientRecord, 0, len(clients))
	for _, c := range clients {
		r := clientRecord{
			Name:       c.Name,
			ExpireTime: ledger.Timestamp{Time: c.ExpireTime},
			Payments:   make([]paymentRecord, 0, len(c.Payments)),
			Info:       c.Info,
		}
		for _, p := range c.Payments {
			r.Payments = append(r.Payments, paymentRecord{
				Seller: p.Seller,
				Money:  p.Money,
				Date:   ledger.Timestamp{Time: p.Date},
			})
		}
		out = append(out, r)
	}
	return out
}

func fromRecords(records []clientRecord) []ledger.Client {
	out := make([]ledger.Client, 0, len(records))
	for _, r := range records {
		c := ledger.Client{
			Name:       r.Name,
			ExpireTime: r.ExpireTime.Time,
			Payments:   make([]ledger.Payment, 0, len(r.Payments)),
			Info:       r.Info,
		}
		for _, p := range r.Payments {
			c.Payments = append(c.Payments, ledger.Payment{
				Seller: p.Seller,
				Money:  p.Money,
				Date:   p.Date.Time,
			})
		}
		out = append(out, c)
	}
	return out
}
