// Package ledgertest holds the behaviour every ledger.Database backend must
// share. Backend packages call Run from their own tests.
package ledgertest

import (
	"errors"
	"testing"
	"time"

	"github.com/Soar-Robotics/ClientLedger/internal/ledger"
)

// Start is the instant every suite clock starts at.
var Start = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

// Clock is a manually advanced ledger.Clock.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock { return &Clock{now: start} }

func (c *Clock) Now() time.Time { return c.now }

func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// OpenFunc starts a new session on one particular store.
type OpenFunc func(clock ledger.Clock) (ledger.Database, error)

// NewStoreFunc creates an empty store for a single test.
type NewStoreFunc func(t *testing.T) OpenFunc

const day = 24 * time.Hour

// Run executes the conformance suite against the backend newStore creates.
func Run(t *testing.T, newStore NewStoreFunc) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s *store)
	}{
		{"AddTwiceFails", testAddTwiceFails},
		{"AddThenListNextDay", testAddThenListNextDay},
		{"RenewBeforeExpiry", testRenewBeforeExpiry},
		{"RenewAfterExpiry", testRenewAfterExpiry},
		{"RenewMissing", testRenewMissing},
		{"RenewLargeDayCount", testRenewLargeDayCount},
		{"RenewAllSkipsExpired", testRenewAllSkipsExpired},
		{"Remove", testRemove},
		{"Rename", testRename},
		{"RenameConflicts", testRenameConflicts},
		{"SetInfoTargets", testSetInfoTargets},
		{"GetInfo", testGetInfo},
		{"Edit", testEdit},
		{"Cleanup", testCleanup},
		{"DiscardWithoutCommit", testDiscardWithoutCommit},
		{"ClosedSession", testClosedSession},
		{"SecondPrecision", testSecondPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, &store{open: newStore(t), clock: NewClock(Start)})
		})
	}
}

type store struct {
	open  OpenFunc
	clock *Clock
}

func (s *store) session(t *testing.T) ledger.Database {
	t.Helper()
	db, err := s.open(s.clock.Now)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func commit(t *testing.T, db ledger.Database) {
	t.Helper()
	if err := db.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("close after commit: %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

func list(t *testing.T, db ledger.Database) []ledger.Client {
	t.Helper()
	clients, err := db.ListClients()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return clients
}

func only(t *testing.T, db ledger.Database) ledger.Client {
	t.Helper()
	clients := list(t, db)
	if len(clients) != 1 {
		t.Fatalf("clients=%d want 1", len(clients))
	}
	return clients[0]
}

func byName(t *testing.T, db ledger.Database, name string) ledger.Client {
	t.Helper()
	for _, c := range list(t, db) {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("client %q not listed", name)
	return ledger.Client{}
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("err=%v want %v", err, target)
	}
}

func wantExpire(t *testing.T, c ledger.Client, want time.Time) {
	t.Helper()
	if !c.ExpireTime.Equal(want) {
		t.Fatalf("%s expires %s want %s", c.Name, ledger.FormatTime(c.ExpireTime), ledger.FormatTime(want))
	}
}

func wantLastPayment(t *testing.T, c ledger.Client, seller string, money uint32) {
	t.Helper()
	p, ok := c.LastPayment()
	if !ok {
		t.Fatalf("%s has no payments", c.Name)
	}
	if p.Seller != seller || p.Money != money {
		t.Fatalf("%s last payment %s(%d) want %s(%d)", c.Name, p.Seller, p.Money, seller, money)
	}
}

func testAddTwiceFails(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	wantErr(t, db.AddClient("testcase", 10, "arian", 30, "other"), ledger.ErrAlreadyExists)
	commit(t, db)

	c := only(t, s.session(t))
	wantExpire(t, c, Start.Add(30*day))
	wantLastPayment(t, c, "pouya", 60)
	if len(c.Payments) != 1 || c.InfoOrEmpty() != "idk" {
		t.Fatalf("second add leaked into %+v", c)
	}
}

func testAddThenListNextDay(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	commit(t, db)

	s.clock.Advance(day)
	c := only(t, s.session(t))
	if got := ledger.DaysLeft(s.clock.Now(), c.ExpireTime); got != 29 {
		t.Fatalf("days left=%d want 29", got)
	}
	wantLastPayment(t, c, "pouya", 60)
	if c.InfoOrEmpty() != "idk" {
		t.Fatalf("info=%q want idk", c.InfoOrEmpty())
	}
	if !c.Payments[0].Date.Equal(Start) {
		t.Fatalf("payment date=%s want %s", c.Payments[0].Date, Start)
	}
}

func testRenewBeforeExpiry(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	s.clock.Advance(day)
	must(t, db.RenewClient("testcase", 10, "arian", 30))
	commit(t, db)

	c := only(t, s.session(t))
	wantExpire(t, c, Start.Add(40*day))
	wantLastPayment(t, c, "arian", 30)
	if len(c.Payments) != 2 {
		t.Fatalf("payments=%d want 2", len(c.Payments))
	}
	if c.Payments[0].Seller != "pouya" || !c.Payments[1].Date.Equal(Start.Add(day)) {
		t.Fatalf("payment history out of order: %+v", c.Payments)
	}
}

func testRenewLargeDayCount(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	s.clock.Advance(day)
	must(t, db.RenewClient("testcase", 200000, "arian", 1))
	must(t, db.RenewAllClients(200000))
	commit(t, db)

	c := only(t, s.session(t))
	wantExpire(t, c, Start.AddDate(0, 0, 400030))
	if !c.ExpireTime.After(Start.Add(30 * day)) {
		t.Fatalf("expiry moved backwards: %s", ledger.FormatTime(c.ExpireTime))
	}
}

func testRenewAfterExpiry(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("late", 1, "pouya", 60, ""))
	s.clock.Advance(3 * day)
	must(t, db.RenewClient("late", 10, "pouya", 60))

	wantExpire(t, only(t, db), Start.Add(13*day))
}

func testRenewMissing(t *testing.T, s *store) {
	db := s.session(t)
	wantErr(t, db.RenewClient("ghost", 10, "pouya", 60), ledger.ErrNotFound)
}

func testRenewAllSkipsExpired(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("active", 30, "arian", 55, "smth"))
	must(t, db.AddClient("expired", 1, "pouya", 60, "idk"))
	commit(t, db)

	s.clock.Advance(2 * day)
	db = s.session(t)
	must(t, db.RenewAllClients(10))
	commit(t, db)

	db = s.session(t)
	wantExpire(t, byName(t, db, "active"), Start.Add(40*day))
	wantExpire(t, byName(t, db, "expired"), Start.Add(day))
	if n := len(byName(t, db, "active").Payments); n != 1 {
		t.Fatalf("renew-all added payments: %d", n)
	}
}

func testRemove(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	must(t, db.RenewClient("testcase", 30, "arian", 30))
	must(t, db.AddClient("keep", 30, "arian", 30, ""))
	commit(t, db)

	db = s.session(t)
	must(t, db.RemoveClient("testcase"))
	wantErr(t, db.RemoveClient("testcase"), ledger.ErrNotFound)
	commit(t, db)

	db = s.session(t)
	c := only(t, db)
	if c.Name != "keep" || len(c.Payments) != 1 {
		t.Fatalf("unexpected survivor %+v", c)
	}
	_, err := db.GetClientInfo("testcase")
	wantErr(t, err, ledger.ErrNotFound)

	// A new client under the old name must not inherit old payments.
	must(t, db.AddClient("testcase", 5, "pouya", 10, ""))
	if n := len(byName(t, db, "testcase").Payments); n != 1 {
		t.Fatalf("orphan payments resurfaced: %d", n)
	}
}

func testRename(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase", 30, "pouya", 60, "idk"))
	must(t, db.RenewClient("testcase", 10, "arian", 30))
	commit(t, db)

	db = s.session(t)
	must(t, db.RenameClient("testcase", "testcasenew"))
	commit(t, db)

	db = s.session(t)
	c := only(t, db)
	if c.Name != "testcasenew" || len(c.Payments) != 2 || c.InfoOrEmpty() != "idk" {
		t.Fatalf("renamed client %+v", c)
	}
	wantExpire(t, c, Start.Add(40*day))
	_, err := db.GetClientInfo("testcase")
	wantErr(t, err, ledger.ErrNotFound)
	wantErr(t, db.RenewClient("testcase", 1, "pouya", 1), ledger.ErrNotFound)

	// Adding under the old name starts a clean history.
	must(t, db.AddClient("testcase", 1, "pouya", 1, ""))
	if n := len(byName(t, db, "testcase").Payments); n != 1 {
		t.Fatalf("payments=%d want 1", n)
	}
}

func testRenameConflicts(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("a", 30, "pouya", 60, ""))
	must(t, db.AddClient("b", 30, "arian", 30, ""))

	wantErr(t, db.RenameClient("ghost", "c"), ledger.ErrNotFound)
	wantErr(t, db.RenameClient("a", "b"), ledger.ErrAlreadyExists)
	must(t, db.RenameClient("a", "a"))

	if got := len(list(t, db)); got != 2 {
		t.Fatalf("clients=%d want 2", got)
	}
	wantLastPayment(t, byName(t, db, "b"), "arian", 30)
}

func testSetInfoTargets(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("testcase1", 30, "pouya", 55, "idk"))
	must(t, db.AddClient("testcase2", 26, "arian", 55, "nemidonam"))
	must(t, db.AddClient("testcase3", 29, "arian", 60, "idk"))

	must(t, db.SetClientInfo(ledger.MatchInfo("idk"), "newidk"))
	for name, want := range map[string]string{"testcase1": "newidk", "testcase2": "nemidonam", "testcase3": "newidk"} {
		if got := byName(t, db, name).InfoOrEmpty(); got != want {
			t.Fatalf("%s info=%q want %q", name, got, want)
		}
	}

	must(t, db.SetClientInfo(ledger.MatchInfo("nothing matches"), "x"))

	must(t, db.SetClientInfo(ledger.OnePerson("testcase2"), "single"))
	if got := byName(t, db, "testcase2").InfoOrEmpty(); got != "single" {
		t.Fatalf("info=%q want single", got)
	}
	wantErr(t, db.SetClientInfo(ledger.OnePerson("ghost"), "x"), ledger.ErrNotFound)

	must(t, db.SetClientInfo(ledger.All(), "everyone"))
	for _, c := range list(t, db) {
		if c.InfoOrEmpty() != "everyone" {
			t.Fatalf("%s info=%q want everyone", c.Name, c.InfoOrEmpty())
		}
	}
}

func testGetInfo(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("a", 30, "pouya", 60, "idk"))
	must(t, db.AddClient("b", 30, "pouya", 60, ""))

	info, err := db.GetClientInfo("a")
	must(t, err)
	if info != "idk" {
		t.Fatalf("info=%q want idk", info)
	}

	info, err = db.GetClientInfo("b")
	must(t, err)
	if info != "" {
		t.Fatalf("info=%q want empty", info)
	}

	_, err = db.GetClientInfo("ghost")
	wantErr(t, err, ledger.ErrNotFound)
}

func testEdit(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("fresh", 30, "pouya", 60, "idk"))
	must(t, db.AddClient("old", 1, "pouya", 60, "idk"))
	commit(t, db)

	s.clock.Advance(2 * day)
	db = s.session(t)
	must(t, db.EditClient("fresh", 5, "arian", 10, "edited"))
	wantErr(t, db.EditClient("old", 5, "arian", 10, ""), ledger.ErrClientExpired)
	wantErr(t, db.EditClient("ghost", 5, "arian", 10, ""), ledger.ErrNotFound)
	commit(t, db)

	c := byName(t, s.session(t), "fresh")
	wantExpire(t, c, Start.Add(7*day))
	wantLastPayment(t, c, "arian", 10)
	if len(c.Payments) != 1 || c.InfoOrEmpty() != "edited" {
		t.Fatalf("edited client %+v", c)
	}
}

func testCleanup(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("gone", 1, "pouya", 60, ""))
	must(t, db.AddClient("recent", 3, "pouya", 60, ""))
	must(t, db.AddClient("active", 30, "pouya", 60, ""))
	commit(t, db)

	s.clock.Advance(7 * day)
	db = s.session(t)
	removed, err := ledger.Cleanup(db, s.clock.Now(), ledger.DefaultGraceDays)
	must(t, err)
	if len(removed) != 1 || removed[0] != "gone" {
		t.Fatalf("removed=%v want [gone]", removed)
	}
	commit(t, db)

	clients := list(t, s.session(t))
	if len(clients) != 2 || clients[0].Name != "active" || clients[1].Name != "recent" {
		t.Fatalf("survivors %+v", clients)
	}
}

func testDiscardWithoutCommit(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("kept", 30, "pouya", 60, "idk"))
	commit(t, db)

	db = s.session(t)
	must(t, db.AddClient("dropped", 30, "arian", 30, ""))
	must(t, db.RenameClient("kept", "renamed"))
	must(t, db.SetClientInfo(ledger.All(), "changed"))
	if got := len(list(t, db)); got != 2 {
		t.Fatalf("session does not see its own changes: %d clients", got)
	}
	must(t, db.Close())

	c := only(t, s.session(t))
	if c.Name != "kept" || c.InfoOrEmpty() != "idk" {
		t.Fatalf("discarded session leaked: %+v", c)
	}
}

func testClosedSession(t *testing.T, s *store) {
	db := s.session(t)
	must(t, db.AddClient("a", 30, "pouya", 60, ""))
	must(t, db.Commit())

	wantErr(t, db.AddClient("b", 30, "pouya", 60, ""), ledger.ErrSessionClosed)
	_, err := db.ListClients()
	wantErr(t, err, ledger.ErrSessionClosed)
	wantErr(t, db.Commit(), ledger.ErrSessionClosed)
	must(t, db.Close())
	must(t, db.Close())

	db = s.session(t)
	must(t, db.Close())
	wantErr(t, db.Commit(), ledger.ErrSessionClosed)
}

func testSecondPrecision(t *testing.T, s *store) {
	s.clock.Advance(1500 * time.Millisecond)
	db := s.session(t)
	must(t, db.AddClient("a", 1, "pouya", 60, ""))
	commit(t, db)

	c := only(t, s.session(t))
	want := Start.Add(time.Second)
	if !c.Payments[0].Date.Equal(want) {
		t.Fatalf("payment date=%s want %s", c.Payments[0].Date, want)
	}
	wantExpire(t, c, want.Add(day))
}
