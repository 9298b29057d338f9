package input

import (
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	v := NewValidator([]string{"arian", "pouya"})
	tests := []struct {
		name    string
		wantErr string
	}{
		{"testcase", ""},
		{"test.case_2-b", ""},
		{strings.Repeat("a", MaxNameLength), ""},
		{"", "must not be empty"},
		{strings.Repeat("a", MaxNameLength+1), "at most 32"},
		{"with space", "only letters"},
		{"semi;colon", "only letters"},
	}

	for _, tt := range tests {
		err := v.Name(tt.name)
		if tt.wantErr == "" {
			if err != nil {
				t.Fatalf("Name(%q) err=%v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Fatalf("Name(%q) err=%v want %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestSeller(t *testing.T) {
	v := NewValidator([]string{"arian", "pouya"})
	if err := v.Seller("pouya"); err != nil {
		t.Fatal(err)
	}
	for _, s := range []string{"", "Pouya", "sara"} {
		err := v.Seller(s)
		if err == nil || !strings.Contains(err.Error(), "arian, pouya") {
			t.Fatalf("Seller(%q) err=%v", s, err)
		}
	}
}

func TestDays(t *testing.T) {
	v := NewValidator(nil)
	for _, days := range []uint32{0, 30, MaxDays} {
		if err := v.Days(days); err != nil {
			t.Fatalf("Days(%d) err=%v", days, err)
		}
	}
	for _, days := range []uint32{MaxDays + 1, 4294967295} {
		if err := v.Days(days); err == nil || !strings.Contains(err.Error(), "at most") {
			t.Fatalf("Days(%d) err=%v", days, err)
		}
	}
}

func TestInfo(t *testing.T) {
	v := NewValidator(nil)
	if err := v.Info(""); err != nil {
		t.Fatal(err)
	}
	if err := v.Info(strings.Repeat("x", MaxInfoLength)); err != nil {
		t.Fatal(err)
	}
	if err := v.Info(strings.Repeat("x", MaxInfoLength+1)); err == nil || !strings.Contains(err.Error(), "at most 64") {
		t.Fatalf("err=%v", err)
	}
}

func TestClient(t *testing.T) {
	v := NewValidator([]string{"arian"})
	if err := v.Client("testcase", "arian", "idk"); err != nil {
		t.Fatal(err)
	}
	if err := v.Client("testcase", "pouya", "idk"); err == nil {
		t.Fatal("unknown seller accepted")
	}
	if err := v.Client("bad name", "arian", "idk"); err == nil {
		t.Fatal("bad name accepted")
	}
}
