package models

import (
	"testing"
	"time"
)

func TestTodayUsesLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	now := time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC)

	if got := Today(now, time.UTC).String(); got != "2024-03-10" {
		t.Errorf("UTC today = %s", got)
	}
	if got := Today(now, tokyo).String(); got != "2024-03-11" {
		t.Errorf("Tokyo today = %s", got)
	}
}

func TestDateArithmetic(t *testing.T) {
	tests := []struct {
		from string
		days int
		want string
	}{
		{"2024-02-28", 1, "2024-02-29"},
		{"2024-02-29", 1, "2024-03-01"},
		{"2023-12-31", 1, "2024-01-01"},
		{"2024-03-01", -1, "2024-02-29"},
	}
	for _, tt := range tests {
		got := MustParseDate(tt.from).AddDays(tt.days)
		if got.String() != tt.want {
			t.Errorf("%s%+d = %s, want %s", tt.from, tt.days, got, tt.want)
		}
		if n := got.DaysSince(MustParseDate(tt.from)); n != tt.days {
			t.Errorf("DaysSince = %d, want %d", n, tt.days)
		}
	}

	a, b := MustParseDate("2024-01-10"), MustParseDate("2024-01-11")
	if !a.Before(b) || a.After(b) || !b.After(a) {
		t.Error("ordering mismatch")
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "2024-13-01", "10/01/2024", "2024-02-30"} {
		if _, err := ParseDate(s); err == nil {
			t.Errorf("ParseDate(%q) should fail", s)
		}
	}
}

func TestDateScan(t *testing.T) {
	var d Date
	if err := d.Scan("2024-05-06"); err != nil || d.String() != "2024-05-06" {
		t.Fatalf("scan string: %v %s", err, d)
	}
	if err := d.Scan([]byte("2024-05-07T00:00:00Z")); err != nil || d.String() != "2024-05-07" {
		t.Fatalf("scan bytes: %v %s", err, d)
	}
	if err := d.Scan(time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2024-05-08" {
		t.Fatalf("scan time: %v %s", err, d)
	}
	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("scan nil: %v %s", err, d)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("scan int should fail")
	}

	v, _ := Date{}.Value()
	if v != nil {
		t.Errorf("zero date value = %v", v)
	}
}

func TestDateText(t *testing.T) {
	var d Date
	if err := d.UnmarshalText([]byte("2024-07-01")); err != nil {
		t.Fatal(err)
	}
	b, _ := d.MarshalText()
	if string(b) != "2024-07-01" {
		t.Errorf("MarshalText = %s", b)
	}
}
