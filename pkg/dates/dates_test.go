package dates

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIsValid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		parts Parts
		want  bool
	}{
		{name: "regular", parts: Parts{Month: 3, Day: 14, Year: 2015}, want: true},
		{name: "leap day", parts: Parts{Month: 2, Day: 29, Year: 2024}, want: true},
		{name: "non leap day", parts: Parts{Month: 2, Day: 29, Year: 2023}, want: false},
		{name: "century non leap", parts: Parts{Month: 2, Day: 29, Year: 1900}, want: false},
		{name: "april 31", parts: Parts{Month: 4, Day: 31, Year: 2020}, want: false},
		{name: "month 13", parts: Parts{Month: 13, Day: 1, Year: 2020}, want: false},
		{name: "two digit year", parts: Parts{Month: 1, Day: 1, Year: 99}, want: false},
		{name: "first four digit year", parts: Parts{Month: 1, Day: 1, Year: MinYear}, want: true},
		{name: "last year", parts: Parts{Month: 12, Day: 31, Year: MaxYear}, want: true},
		{name: "three digit year", parts: Parts{Month: 1, Day: 1, Year: 999}, want: false},
		{name: "zero", parts: Parts{}, want: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValid(tc.parts); got != tc.want {
				t.Fatalf("IsValid(%s) = %v, want %v", tc.parts, got, tc.want)
			}
		})
	}
}

func TestFromMapAndBack(t *testing.T) {
	t.Parallel()

	parts := FromMap(map[string]any{"month": 7, "day": float64(4), "year": 1976})
	if diff := cmp.Diff(Parts{Month: 7, Day: 4, Year: 1976}, parts); diff != "" {
		t.Fatalf("parts mismatch (-want +got):\n%s", diff)
	}

	partial := Parts{Month: 5}.Map()
	if diff := cmp.Diff(map[string]any{"month": 5}, partial); diff != "" {
		t.Fatalf("map mismatch (-want +got):\n%s", diff)
	}
	if !FromMap("not a map").IsZero() {
		t.Fatalf("expected zero parts for unexpected input")
	}
}

func TestTime(t *testing.T) {
	t.Parallel()

	got, err := Parts{Month: 12, Day: 31, Year: 1999}.Time()
	if err != nil {
		t.Fatalf("Time returned error: %v", err)
	}
	if got.Format("2006-01-02") != "1999-12-31" {
		t.Fatalf("unexpected time %s", got)
	}
	if _, err := (Parts{Month: 2, Day: 30, Year: 2000}).Time(); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
