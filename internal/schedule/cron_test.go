package schedule

import (
	"testing"
	"time"
)

func TestParseCronSpecAcceptsCommonForms(t *testing.T) {
	cases := []string{
		"* * * * *",
		"*/5 * * * *",
		"0 2 * * *",
		"0,15,30,45 9-17 * * 1-5",
	}

	for _, expr := range cases {
		if _, err := ParseCronSpec(expr); err != nil {
			t.Fatalf("ParseCronSpec(%q) unexpected error: %v", expr, err)
		}
	}
}

func TestParseCronSpecRejectsInvalid(t *testing.T) {
	cases := []string{
		"61 * * * *",
		"* 24 * * *",
		"* * 0 * *",
		"* * * 13 *",
		"* * * * 7",
		"* * * *",
		"bad * * * *",
	}

	for _, expr := range cases {
		if _, err := ParseCronSpec(expr); err == nil {
			t.Fatalf("ParseCronSpec(%q) expected error, got nil", expr)
		}
	}
}

func TestParseCronSpecRejectsImpossibleDates(t *testing.T) {
	cases := []string{
		"0 0 31 2 *",        // February 31st
		"0 0 30 2 *",        // February 30th
		"0 0 31 4 *",        // April 31st
		"0 0 31 4,6,9,11 *", // 31st of the 30-day months
		"0 0 30,31 2 *",     // no listed day fits February
	}

	for _, expr := range cases {
		if _, err := ParseCronSpec(expr); err == nil {
			t.Fatalf("ParseCronSpec(%q) expected error, got nil", expr)
		}
	}
}

func TestParseCronSpecAcceptsRareButRealDates(t *testing.T) {
	cases := []string{
		"0 0 29 2 *",   // leap day
		"0 0 31 1,2 *", // January 31st satisfies the pair
		"0 0 30 * *",   // some month always has a 30th
		"0 0 31 * *",   // likewise a 31st
	}

	for _, expr := range cases {
		spec, err := ParseCronSpec(expr)
		if err != nil {
			t.Fatalf("ParseCronSpec(%q) unexpected error: %v", expr, err)
		}
		base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
		next := spec.Next(base)
		if !next.After(base) {
			t.Fatalf("Next(%q) = %s, not strictly after %s", expr, next, base)
		}
	}
}

func TestCronSpecNextCrossesLongLeapGap(t *testing.T) {
	spec, err := ParseCronSpec("0 0 29 2 *")
	if err != nil {
		t.Fatalf("ParseCronSpec: %v", err)
	}

	// 2100 is not a leap year, so from March 2096 the next Feb 29 is 2104.
	at := time.Date(2096, 3, 1, 0, 0, 0, 0, time.UTC)
	want := time.Date(2104, 2, 29, 0, 0, 0, 0, time.UTC)
	if got := spec.Next(at); !got.Equal(want) {
		t.Fatalf("Next across century: got %s want %s", got, want)
	}
}

func TestCronSpecNextIsStrictlyAfterAndMatches(t *testing.T) {
	exprs := []string{
		"* * * * *",
		"*/15 * * * *",
		"0 2 * * *",
		"30 4 1 * *",
		"0 0 * * 0",
	}
	base := time.Date(2026, 8, 30, 11, 40, 23, 0, time.UTC)

	for _, expr := range exprs {
		spec, err := ParseCronSpec(expr)
		if err != nil {
			t.Fatalf("ParseCronSpec(%q): %v", expr, err)
		}
		next := spec.Next(base)
		if !next.After(base) {
			t.Fatalf("Next(%q) = %s, not after %s", expr, next, base)
		}
		if !spec.Matches(next) {
			t.Fatalf("Next(%q) = %s does not match spec", expr, next)
		}
		if next.Second() != 0 || next.Nanosecond() != 0 {
			t.Fatalf("Next(%q) = %s not aligned to a minute", expr, next)
		}
	}
}

func TestCronSpecNextSkipsToDueMinute(t *testing.T) {
	spec, err := ParseCronSpec("0 2 * * *")
	if err != nil {
		t.Fatalf("ParseCronSpec: %v", err)
	}

	// Exactly at a fire time: next must be the following day, not now.
	at := time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC)
	want := time.Date(2026, 8, 31, 2, 0, 0, 0, time.UTC)
	if got := spec.Next(at); !got.Equal(want) {
		t.Fatalf("Next at fire time: got %s want %s", got, want)
	}

	before := time.Date(2026, 8, 30, 1, 59, 30, 0, time.UTC)
	want = time.Date(2026, 8, 30, 2, 0, 0, 0, time.UTC)
	if got := spec.Next(before); !got.Equal(want) {
		t.Fatalf("Next before fire time: got %s want %s", got, want)
	}
}

func TestCronSpecMatches(t *testing.T) {
	spec, err := ParseCronSpec("15 2 * * 1-5")
	if err != nil {
		t.Fatalf("ParseCronSpec: %v", err)
	}

	match := time.Date(2026, 2, 20, 2, 15, 0, 0, time.UTC) // Friday
	noMatchMinute := time.Date(2026, 2, 20, 2, 16, 0, 0, time.UTC)
	noMatchDow := time.Date(2026, 2, 21, 2, 15, 0, 0, time.UTC) // Saturday

	if !spec.Matches(match) {
		t.Fatalf("expected match at %s", match)
	}
	if spec.Matches(noMatchMinute) {
		t.Fatalf("expected no match at %s", noMatchMinute)
	}
	if spec.Matches(noMatchDow) {
		t.Fatalf("expected no match at %s", noMatchDow)
	}
}
