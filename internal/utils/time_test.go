package utils

import (
	"testing"
	"time"
)

func TestDateKey(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{
			name: "utc midday",
			t:    time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC),
			want: "2024-03-09",
		},
		{
			name: "late evening local is not shifted to utc",
			t:    time.Date(2024, 3, 9, 23, 30, 0, 0, est),
			want: "2024-03-09",
		},
		{
			name: "just after midnight local",
			t:    time.Date(2024, 1, 1, 0, 5, 0, 0, est),
			want: "2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DateKey(tt.t); got != tt.want {
				t.Errorf("DateKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		key     string
		want    int
		wantErr bool
	}{
		{key: "2024-06-02", want: 0}, // Sunday
		{key: "2024-06-03", want: 1},
		{key: "2024-06-08", want: 6},
		{key: "2025-12-31", want: 3},
		{key: "2024-13-01", wantErr: true},
		{key: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Weekday(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Weekday(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Weekday(%q) = %d, want %d", tt.key, got, tt.want)
			}
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29},
		{2023, time.February, 28},
		{1900, time.February, 28},
		{2000, time.February, 29},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := DaysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("DaysInMonth(%d, %s) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestAddDays(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	if got := DateKey(AddDays(start, -1)); got != "2024-02-29" {
		t.Errorf("AddDays(-1) = %s, want 2024-02-29", got)
	}
	if got := DateKey(AddDays(start, 31)); got != "2024-04-01" {
		t.Errorf("AddDays(31) = %s, want 2024-04-01", got)
	}
	if got := DateKey(AddDays(start, -366)); got != "2023-03-01" {
		t.Errorf("AddDays(-366) = %s, want 2023-03-01", got)
	}
}

func TestCivilDateAcrossDST(t *testing.T) {
	est, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	// 2024-03-10 is the spring-forward day in New York.
	day := CivilDate(time.Date(2024, 3, 11, 0, 30, 0, 0, est))
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		seen[DateKey(AddDays(day, -i))] = true
	}
	for _, want := range []string{"2024-03-11", "2024-03-10", "2024-03-09"} {
		if !seen[want] {
			t.Errorf("expected %s in backward walk, got %v", want, seen)
		}
	}
}

func TestDateRange(t *testing.T) {
	end := time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC)
	days := DateRange(end, 4)
	want := []string{"2023-12-30", "2023-12-31", "2024-01-01", "2024-01-02"}
	if len(days) != len(want) {
		t.Fatalf("DateRange returned %d days, want %d", len(days), len(want))
	}
	for i, d := range days {
		if DateKey(d) != want[i] {
			t.Errorf("day %d = %s, want %s", i, DateKey(d), want[i])
		}
	}

	if got := DateRange(end, 0); len(got) != 0 {
		t.Errorf("DateRange(0) = %v, want empty", got)
	}
}

func TestParseDateOrToday(t *testing.T) {
	now := time.Date(2024, 7, 4, 18, 45, 0, 0, time.Local)

	got, err := ParseDateOrToday("", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if DateKey(got) != "2024-07-04" {
		t.Errorf("empty key = %s, want 2024-07-04", DateKey(got))
	}

	got, err = ParseDateOrToday("2024-02-29", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if DateKey(got) != "2024-02-29" {
		t.Errorf("explicit key = %s, want 2024-02-29", DateKey(got))
	}

	if _, err := ParseDateOrToday("2023-02-29", now); err == nil {
		t.Error("expected error for invalid date")
	}
}

func TestFirstWeekdayOfMonth(t *testing.T) {
	if got := FirstWeekdayOfMonth(2024, time.June); got != time.Saturday {
		t.Errorf("June 2024 starts on %s, want Saturday", got)
	}
	if got := FirstWeekdayOfMonth(2024, time.September); got != time.Sunday {
		t.Errorf("September 2024 starts on %s, want Sunday", got)
	}
}
