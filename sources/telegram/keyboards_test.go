package telegram

import (
	"testing"
)

func TestPaymentFailedKeyboardOffersMethodChange(t *testing.T) {
	markup := PaymentFailedKeyboard(testLoc(t), "en", 7)

	if len(markup.InlineKeyboard) != 2 {
		t.Fatalf("expected method-change and menu rows, got %d", len(markup.InlineKeyboard))
	}

	button := markup.InlineKeyboard[0][0]
	if button.CallbackData == nil {
		t.Fatal("method-change button has no callback data")
	}
	payload, err := DecodePayload(*button.CallbackData)
	if err != nil {
		t.Fatalf("undecodable callback data: %v", err)
	}
	if payload.Kind != KindPayment || payload.Get("a") != "options" || payload.GetInt64("id") != 7 {
		t.Errorf("unexpected payload %q", *button.CallbackData)
	}
}

func TestPaymentWaitingKeyboardCarriesPayLink(t *testing.T) {
	markup := PaymentWaitingKeyboard(testLoc(t), "en", "https://pay.example/p-1", "p-1")

	if markup.InlineKeyboard[0][0].URL == nil {
		t.Fatal("waiting keyboard must carry the pay link")
	}
	if *markup.InlineKeyboard[0][0].URL != "https://pay.example/p-1" {
		t.Errorf("unexpected link %q", *markup.InlineKeyboard[0][0].URL)
	}
}
