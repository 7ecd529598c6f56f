package telegram

import (
	"testing"

	"clubify/sources/configuration"
	"clubify/sources/localization"
	"clubify/sources/repository"
	"clubify/sources/tracing"
)

func testLoc(t *testing.T) *localization.Manager {
	t.Helper()

	config := &configuration.Config{}
	config.Localization.SupportedLanguages = []string{"en", "ru"}
	config.Localization.DefaultLanguage = "en"

	loc, err := localization.NewManager(config, tracing.NewConsoleLogger())
	if err != nil {
		t.Fatalf("localization init failed: %v", err)
	}
	return loc
}

func TestCallbackAllowedGatesPaymentButtons(t *testing.T) {
	cases := []struct {
		name  string
		kind  string
		state int
		want  bool
	}{
		{"payment from subscription detail", KindPayment, repository.StateSubscriptionDetail, true},
		{"payment from method select", KindPayment, repository.StatePaymentMethodSelect, true},
		{"payment while pending", KindPayment, repository.StatePaymentPending, true},
		{"payment from idle", KindPayment, repository.StateIdle, true},
		{"payment from subscriptions list", KindPayment, repository.StateSubscriptionsList, false},
		{"payment from history", KindPayment, repository.StatePaymentsHistory, false},
		{"payment from admin menu", KindPayment, repository.StateAdminMain, false},
		{"navigation from anywhere", KindNav, repository.StateAdminBroadcastText, true},
		{"subscriptions from anywhere", KindSubscriptions, repository.StatePaymentPending, true},
		{"language from anywhere", KindLanguage, repository.StateFAQ, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := callbackAllowed(tc.kind, tc.state); got != tc.want {
				t.Errorf("callbackAllowed(%q, %s) = %v, want %v",
					tc.kind, repository.StateName(tc.state), got, tc.want)
			}
		})
	}
}
