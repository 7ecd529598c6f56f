package format

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestDateRendersPerLanguage(t *testing.T) {
	cases := []struct {
		name  string
		value string
		lang  string
		want  string
	}{
		{"russian layout", "2025-01-15T18:30:00Z", "ru", "15.01.2025 18:30"},
		{"english layout", "2025-01-15T18:30:00Z", "en", "2025-01-15 18:30"},
		{"unknown language falls back to english", "2025-01-15T18:30:00Z", "de", "2025-01-15 18:30"},
		{"unparsable passes through", "tomorrow-ish", "ru", "tomorrow-ish"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Date(tc.value, tc.lang); got != tc.want {
				t.Errorf("Date(%q, %q) = %q, want %q", tc.value, tc.lang, got, tc.want)
			}
		})
	}
}

func TestMinutesUntil(t *testing.T) {
	now := time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		value string
		want  int
	}{
		{"fifteen minutes ahead", "2025-01-15T12:15:00Z", 15},
		{"already expired clamps to zero", "2025-01-15T11:00:00Z", 0},
		{"unparsable is zero", "never", 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MinutesUntil(tc.value, now); got != tc.want {
				t.Errorf("MinutesUntil(%q) = %d, want %d", tc.value, tc.want, got)
			}
		})
	}
}

func TestMoneyTrimsTrailingZeros(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"250.00", "RUB", "250 RUB"},
		{"99.90", "RUB", "99.9 RUB"},
		{"10.55", "USD", "10.55 USD"},
		{"0", "", "0"},
	}

	for _, tc := range cases {
		amount, err := decimal.NewFromString(tc.amount)
		if err != nil {
			t.Fatalf("bad amount %q: %v", tc.amount, err)
		}
		if got := Money(amount, tc.currency); got != tc.want {
			t.Errorf("Money(%s, %q) = %q, want %q", tc.amount, tc.currency, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("short", 10); got != "short" {
		t.Errorf("short text must pass through, got %q", got)
	}
	if got := Truncate("привет, это длинный текст", 10); got != "привет, эт…" {
		t.Errorf("unexpected truncation %q", got)
	}
}
