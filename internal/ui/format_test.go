package ui

import (
	"testing"

	"github.com/wishly-app/wishly/internal/api"
)

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0 ₽"},
		{500, "500 ₽"},
		{9000, "9 000 ₽"},
		{1234567, "1 234 567 ₽"},
		{1500.5, "1 500.50 ₽"},
	}
	for _, tc := range cases {
		if got := formatMoney(tc.in); got != tc.want {
			t.Fatalf("formatMoney(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestContributeHint(t *testing.T) {
	fresh := api.Gift{Price: 9000}
	if got := contributeHint(fresh); got != "between 3 000 ₽ and 9 000 ₽" {
		t.Fatalf("hint = %q", got)
	}

	nearlyDone := api.Gift{Price: 9000, Collected: 7000}
	if got := contributeHint(nearlyDone); got != "exactly 2 000 ₽ to finish it" {
		t.Fatalf("hint = %q", got)
	}
}
