package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTimeRoundTrip(t *testing.T) {
	times := []time.Time{
		time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
		time.Date(1999, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2030, 2, 28, 0, 0, 1, 0, time.UTC),
		Truncate(time.Now()),
	}

	for _, want := range times {
		got, err := ParseTime(FormatTime(want))
		if err != nil {
			t.Fatalf("ParseTime(%q) err=%v", FormatTime(want), err)
		}
		if !got.Equal(want) || got.Location() != time.UTC {
			t.Fatalf("round trip %s -> %s", want, got)
		}
	}
}

func TestFormatTimeConvertsToUTC(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	in := time.Date(2024, 3, 10, 15, 30, 0, 999, tehran)
	if got := FormatTime(in); got != "2024-03-10 12:00:00" {
		t.Fatalf("FormatTime=%q", got)
	}
}

func TestParseTimeRejectsOtherLayouts(t *testing.T) {
	for _, s := range []string{"", "2024-03-10", "2024-03-10T12:00:00Z", "10/03/2024 12:00:00"} {
		if _, err := ParseTime(s); err == nil {
			t.Fatalf("ParseTime(%q) accepted", s)
		}
	}
}

func TestTimestampJSON(t *testing.T) {
	in := Timestamp{Time: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `"2024-03-10 12:00:00"` {
		t.Fatalf("marshal=%s", data)
	}

	var out Timestamp
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if !out.Equal(in.Time) {
		t.Fatalf("unmarshal=%s want %s", out, in)
	}

	if err := json.Unmarshal([]byte(`12`), &out); err == nil {
		t.Fatal("number accepted as timestamp")
	}
}

func TestRenewedExpiry(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		expire time.Time
		days   uint32
		want   time.Time
	}{
		{"active keeps remaining time", now.Add(5 * day), 10, now.Add(15 * day)},
		{"expired counts from now", now.Add(-5 * day), 10, now.Add(10 * day)},
		{"expiring right now", now, 10, now.Add(10 * day)},
		{"zero days never shrinks", now.Add(-time.Hour), 0, now},
		{"day count beyond a Duration", now.Add(day), 200000, now.AddDate(0, 0, 200001)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenewedExpiry(now, tt.expire, tt.days)
			if !got.Equal(tt.want) {
				t.Fatalf("got %s want %s", got, tt.want)
			}
			if got.Before(tt.expire) {
				t.Fatalf("expiry moved backwards: %s -> %s", tt.expire, got)
			}
		})
	}
}

func TestAddDaysLargeCounts(t *testing.T) {
	start := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	got := AddDays(start, 1_000_000)
	want := time.Date(4762, 2, 5, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("AddDays=%s want %s", got, want)
	}
	if back, err := ParseTime(FormatTime(got)); err != nil || !back.Equal(got) {
		t.Fatalf("round trip %s: %v", back, err)
	}
}

func TestDaysLeft(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := DaysLeft(now, now.Add(30*day-time.Second)); got != 29 {
		t.Fatalf("DaysLeft=%d want 29", got)
	}
	if got := DaysLeft(now, now.Add(-2*day)); got != -2 {
		t.Fatalf("DaysLeft=%d want -2", got)
	}
	if got := DaysSinceExpiry(now, now.Add(-5*day)); got != 5 {
		t.Fatalf("DaysSinceExpiry=%d want 5", got)
	}
	if got := DaysLeft(now, AddDays(now, 200000)); got != 200000 {
		t.Fatalf("DaysLeft=%d want 200000", got)
	}
}

func TestNewClient(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 500, time.UTC)
	c := NewClient(now, "testcase", 30, "pouya", 60, "idk")

	if !c.ExpireTime.Equal(Truncate(now).Add(30 * day)) {
		t.Fatalf("expire=%s", c.ExpireTime)
	}
	p, ok := c.LastPayment()
	if !ok || p.Seller != "pouya" || p.Money != 60 || !p.Date.Equal(Truncate(now)) {
		t.Fatalf("payment=%+v", p)
	}
	if c.InfoOrEmpty() != "idk" {
		t.Fatalf("info=%q", c.InfoOrEmpty())
	}
	if c.IsExpired(now) || !c.IsExpired(now.Add(31*day)) {
		t.Fatal("IsExpired disagrees with expire time")
	}
}

func TestClientDefaults(t *testing.T) {
	var c Client
	if c.InfoOrEmpty() != "" {
		t.Fatal("nil info should read as empty")
	}
	if _, ok := c.LastPayment(); ok {
		t.Fatal("client without payments reported a last payment")
	}
}

func TestTargets(t *testing.T) {
	tests := []struct {
		target Target
		name   string
		info   string
		want   bool
	}{
		{All(), "a", "", true},
		{All(), "b", "x", true},
		{MatchInfo("idk"), "a", "idk", true},
		{MatchInfo("idk"), "a", "idk ", false},
		{MatchInfo(""), "a", "", true},
		{OnePerson("a"), "a", "x", true},
		{OnePerson("a"), "b", "x", false},
	}

	for _, tt := range tests {
		if got := tt.target.Matches(tt.name, tt.info); got != tt.want {
			t.Fatalf("%#v.Matches(%q, %q)=%v want %v", tt.target, tt.name, tt.info, got, tt.want)
		}
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("disk full")
	tests := []struct {
		err  error
		want error
	}{
		{&NotFoundError{Name: "a"}, ErrNotFound},
		{&AlreadyExistsError{Name: "a"}, ErrAlreadyExists},
		{IOError("write", cause), ErrStorageIO},
		{FormatError("parse", cause), ErrStorageFormat},
		{&InvariantError{Name: "a", Detail: "no payments"}, ErrInvariantViolation},
		{fmt.Errorf("wrapped: %w", &NotFoundError{Name: "a"}), ErrNotFound},
	}

	for _, tt := range tests {
		if !errors.Is(tt.err, tt.want) {
			t.Fatalf("%v is not %v", tt.err, tt.want)
		}
	}

	if errors.Is(IOError("write", cause), ErrStorageFormat) {
		t.Fatal("i/o error reported as format error")
	}
	if !errors.Is(IOError("write", cause), cause) {
		t.Fatal("storage error does not unwrap its cause")
	}
	if got := (&NotFoundError{Name: "testcase"}).Error(); got != "client with name 'testcase' doesn't exist" {
		t.Fatalf("message=%q", got)
	}
}

type fakeDB struct {
	Database
	clients []Client
	removed []string
	failOn  string
}

func (f *fakeDB) ListClients() ([]Client, error) { return f.clients, nil }

func (f *fakeDB) RemoveClient(name string) error {
	if name == f.failOn {
		return IOError("delete", errors.New("boom"))
	}
	f.removed = append(f.removed, name)
	return nil
}

func TestCleanup(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	db := &fakeDB{clients: []Client{
		{Name: "long-gone", ExpireTime: now.Add(-30 * day)},
		{Name: "grace-edge", ExpireTime: now.Add(-5 * day)},
		{Name: "grace", ExpireTime: now.Add(-5*day + time.Second)},
		{Name: "active", ExpireTime: now.Add(day)},
	}}

	removed, err := Cleanup(db, now, DefaultGraceDays)
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprint(removed) != "[long-gone grace-edge]" || fmt.Sprint(db.removed) != fmt.Sprint(removed) {
		t.Fatalf("removed=%v db.removed=%v", removed, db.removed)
	}

	db = &fakeDB{clients: db.clients, failOn: "grace-edge"}
	removed, err = Cleanup(db, now, DefaultGraceDays)
	if !errors.Is(err, ErrStorageIO) || fmt.Sprint(removed) != "[long-gone]" {
		t.Fatalf("removed=%v err=%v", removed, err)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{StateOpen: "open", StateCommitted: "committed", StateDiscarded: "discarded", State(9): "unknown"} {
		if s.String() != want {
			t.Fatalf("%d.String()=%q want %q", s, s.String(), want)
		}
	}
}
