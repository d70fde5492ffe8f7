package postgres

import (
	"testing"
	"time"
)

func TestFormatTicketNumber(t *testing.T) {
	day := time.Date(2026, 3, 9, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		officeID int64
		seq      int64
		want     string
	}{
		{5, 1, "005-20260309-0001"},
		{5, 42, "005-20260309-0042"},
		{123, 9999, "123-20260309-9999"},
		// Both segments widen past their padding instead of truncating.
		{5, 10000, "005-20260309-10000"},
		{1234, 1, "1234-20260309-0001"},
	}

	for _, tc := range cases {
		if got := formatTicketNumber(tc.officeID, day, tc.seq); got != tc.want {
			t.Errorf("formatTicketNumber(%d, day, %d) = %q, want %q", tc.officeID, tc.seq, got, tc.want)
		}
	}
}

func TestFormatTicketNumberUsesCalendarDay(t *testing.T) {
	morning := time.Date(2026, 3, 9, 0, 0, 1, 0, time.UTC)
	night := time.Date(2026, 3, 9, 23, 59, 59, 0, time.UTC)

	if formatTicketNumber(5, morning, 1) != formatTicketNumber(5, night, 1) {
		t.Fatal("same calendar day must render the same date segment")
	}

	nextDay := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if formatTicketNumber(5, night, 1) == formatTicketNumber(5, nextDay, 1) {
		t.Fatal("different calendar days must render different date segments")
	}
}
