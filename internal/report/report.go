// Package report renders the client list as aligned plain-text rows.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
)

// Table collects rows and pads each column to its widest cell.
type Table struct {
	widths []int
	rows   [][]string
}

func NewTable(columns int) *Table {
	return &Table{widths: make([]int, columns)}
}

// Add appends a row. It panics if the row does not have one cell per column.
func (t *Table) Add(cells ...string) {
	if len(cells) != len(t.widths) {
		panic(fmt.Sprintf("report: row has %d cells, table has %d columns", len(cells), len(t.widths)))
	}

	for i, c := range cells {
		if n := utf8.RuneCountInString(c); n > t.widths[i] {
			t.widths[i] = n
		}
	}
	t.rows = append(t.rows, cells)
}

// Write prints one line per row, cells joined by a single space. With trim
// set cells are not padded.
func (t *Table) Write(w io.Writer, trim bool) error {
	for _, row := range t.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			if trim {
				cells[i] = c
				continue
			}
			cells[i] = c + strings.Repeat(" ", t.widths[i]-utf8.RuneCountInString(c))
		}

		if _, err := fmt.Fprintln(w, strings.Join(cells, " ")); err != nil {
			return err
		}
	}
	return nil
}

type Options struct {
	TrimWhitespace bool
	// Verbose appends the exact expiry time to the days-left column.
	Verbose bool
}

// Clients writes one row per client, latest expiry first: name, days left,
// last payment and info.
func Clients(w io.Writer, clients []ledger.Client, now time.Time, opts Options) error {
	sorted := append([]ledger.Client(nil), clients...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].ExpireTime.Equal(sorted[j].ExpireTime) {
			return sorted[i].ExpireTime.After(sorted[j].ExpireTime)
		}
		return sorted[i].Name < sorted[j].Name
	})

	table := NewTable(4)
	for _, c := range sorted {
		left := DaysLeft(now, c.ExpireTime)
		if opts.Verbose {
			left += " (" + ledger.FormatTime(c.ExpireTime) + ")"
		}
		table.Add(c.Name, left, LastPayment(c), c.InfoOrEmpty())
	}

	return table.Write(w, opts.TrimWhitespace)
}

// DaysLeft renders the remaining subscription as "<n>d", or "expired".
func DaysLeft(now, expire time.Time) string {
	if expire.Before(now) {
		return "expired"
	}
	return fmt.Sprintf("%dd", ledger.DaysLeft(now, expire))
}

// LastPayment renders the most recent payment as "seller(money)".
func LastPayment(c ledger.Client) string {
	p, ok := c.LastPayment()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%s(%d)", p.Seller, p.Money)
}
