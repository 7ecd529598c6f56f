package internalapi

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clubify/sources/configuration"
	"clubify/sources/gateway"
	"clubify/sources/localization"
	"clubify/sources/repository"
	"clubify/sources/tracing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeStore struct {
	contexts map[string]*repository.PaymentContext
	updates  map[string]int
	cleared  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contexts: map[string]*repository.PaymentContext{},
		updates:  map[string]int{},
	}
}

func (f *fakeStore) Get(ctx context.Context, paymentID string) (*repository.PaymentContext, error) {
	return f.contexts[paymentID], nil
}

func (f *fakeStore) UpdateMessageID(ctx context.Context, paymentID string, messageID int) error {
	f.updates[paymentID] = messageID
	if stored := f.contexts[paymentID]; stored != nil {
		stored.MessageID = messageID
	}
	return nil
}

func (f *fakeStore) Clear(ctx context.Context, paymentID string) error {
	f.cleared = append(f.cleared, paymentID)
	delete(f.contexts, paymentID)
	return nil
}

type sentMessage struct {
	chatID    int64
	messageID int
	text      string
	markup    *tgbotapi.InlineKeyboardMarkup
}

type fakeMessenger struct {
	editFails bool
	edits     []sentMessage
	sends     []sentMessage
	nextID    int
}

func (f *fakeMessenger) EditText(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	if f.editFails {
		return errors.New("message is not modified")
	}
	f.edits = append(f.edits, sentMessage{chatID: chatID, messageID: messageID, text: text, markup: markup})
	return nil
}

func (f *fakeMessenger) SendWithKeyboard(chatID int64, text string, markup any) (int, error) {
	f.nextID++
	id := 1000 + f.nextID
	f.sends = append(f.sends, sentMessage{chatID: chatID, messageID: id, text: text})
	return id, nil
}

type fakeLanguages struct {
	langs map[int64]string
}

func (f *fakeLanguages) Get(ctx context.Context, tgID int64) string {
	return f.langs[tgID]
}

type fakeBackend struct {
	payments   map[string]*gateway.Payment
	subs       map[int64]*gateway.Subscription
	paymentErr error
	subErr     error
}

func (f *fakeBackend) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	if f.paymentErr != nil {
		return nil, f.paymentErr
	}
	if payment := f.payments[paymentID]; payment != nil {
		return payment, nil
	}
	return nil, errors.New("payment not found")
}

func (f *fakeBackend) GetSubscription(ctx context.Context, tgID, subscriptionID int64) (*gateway.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	if sub := f.subs[subscriptionID]; sub != nil {
		return sub, nil
	}
	return nil, errors.New("subscription not found")
}

func testLocalization(t *testing.T) *localization.Manager {
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

func testReconciler(t *testing.T, store *fakeStore, messenger *fakeMessenger, langs *fakeLanguages, backend *fakeBackend) *Reconciler {
	t.Helper()
	if langs == nil {
		langs = &fakeLanguages{langs: map[int64]string{}}
	}
	if backend == nil {
		backend = &fakeBackend{}
	}
	return NewReconciler(store, messenger, langs, backend, testLocalization(t), nil, tracing.NewConsoleLogger())
}

func TestPaidEventEditsMessageAndClearsContext(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, SubscriptionID: 7, MessageID: 500}
	messenger := &fakeMessenger{}
	backend := &fakeBackend{subs: map[int64]*gateway.Subscription{
		7: {ID: 7, UntilDate: "2025-01-01T00:00:00Z"},
	}}

	outcome, err := testReconciler(t, store, messenger, nil, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-1",
		Status:    "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeProcessed {
		t.Fatalf("unexpected outcome %v", outcome)
	}

	if len(messenger.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(messenger.edits))
	}
	edit := messenger.edits[0]
	if edit.chatID != 42 || edit.messageID != 500 {
		t.Errorf("edited wrong message: %+v", edit)
	}
	if !strings.Contains(edit.text, "2025-01-01 00:00") {
		t.Errorf("success text missing validity date from the backend: %q", edit.text)
	}

	if len(store.cleared) != 1 || store.cleared[0] != "p-1" {
		t.Errorf("context not cleared: %v", store.cleared)
	}
}

func TestPaidEventUsesCachedLanguage(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, SubscriptionID: 7, MessageID: 500}
	messenger := &fakeMessenger{}
	langs := &fakeLanguages{langs: map[int64]string{42: "ru"}}
	backend := &fakeBackend{subs: map[int64]*gateway.Subscription{
		7: {ID: 7, UntilDate: "2025-01-01T00:00:00Z"},
	}}

	_, err := testReconciler(t, store, messenger, langs, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-1",
		Status:    "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(messenger.edits[0].text, "01.01.2025") {
		t.Errorf("expected russian date layout, got %q", messenger.edits[0].text)
	}
}

func TestPaidEventSurvivesSubscriptionFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, SubscriptionID: 7, MessageID: 500}
	messenger := &fakeMessenger{}
	backend := &fakeBackend{subErr: errors.New("backend down")}

	_, err := testReconciler(t, store, messenger, nil, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-1",
		Status:    "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(messenger.edits))
	}
	if !strings.Contains(messenger.edits[0].text, "—") {
		t.Errorf("expected the date placeholder, got %q", messenger.edits[0].text)
	}
	if len(store.cleared) != 1 {
		t.Errorf("context must clear even without the validity date: %v", store.cleared)
	}
}

func TestPendingEventRecoversPayLink(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, MessageID: 500}
	messenger := &fakeMessenger{}
	backend := &fakeBackend{payments: map[string]*gateway.Payment{
		"p-1": {PaymentID: "p-1", PayLink: "https://pay.example/p-1", ExpiresAt: "2099-01-01T00:00:00Z"},
	}}

	_, err := testReconciler(t, store, messenger, nil, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-1",
		Status:    "pending",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(messenger.edits))
	}
	markup := messenger.edits[0].markup
	if markup == nil || len(markup.InlineKeyboard) == 0 {
		t.Fatal("waiting screen must carry a keyboard")
	}
	if markup.InlineKeyboard[0][0].URL == nil {
		t.Error("waiting screen must carry the pay-link button")
	}
}

func TestPendingEventSurvivesPaymentFetchFailure(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, MessageID: 500}
	messenger := &fakeMessenger{}
	backend := &fakeBackend{paymentErr: errors.New("backend down")}

	_, err := testReconciler(t, store, messenger, nil, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-1",
		Status:    "pending",
	})
	if err != nil {
		t.Fatalf("fetch failure must not drop the notification: %v", err)
	}

	if len(messenger.edits) != 1 {
		t.Fatalf("expected one edit, got %d", len(messenger.edits))
	}
	markup := messenger.edits[0].markup
	if markup == nil {
		t.Fatal("expected the reduced waiting keyboard")
	}
	for _, row := range markup.InlineKeyboard {
		for _, button := range row {
			if button.URL != nil {
				t.Error("no pay link is known, keyboard must not carry one")
			}
		}
	}
}

func TestUnknownPaymentAcknowledgedWithoutMessages(t *testing.T) {
	store := newFakeStore()
	messenger := &fakeMessenger{}

	outcome, err := testReconciler(t, store, messenger, nil, nil).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "ghost",
		Status:    "paid",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != OutcomeNoContext {
		t.Fatalf("expected no-context outcome, got %v", outcome)
	}
	if len(messenger.edits)+len(messenger.sends) != 0 {
		t.Errorf("no messages expected, got %d edits and %d sends", len(messenger.edits), len(messenger.sends))
	}
}

func TestEditFailureFallsBackToSendAndRepointsContext(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-2"] = &repository.PaymentContext{TelegramID: 42, MessageID: 500}
	messenger := &fakeMessenger{editFails: true}
	backend := &fakeBackend{payments: map[string]*gateway.Payment{
		"p-2": {PaymentID: "p-2", ExpiresAt: "2099-01-01T00:00:00Z"},
	}}

	_, err := testReconciler(t, store, messenger, nil, backend).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-2",
		Status:    "pending",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.sends) != 1 {
		t.Fatalf("expected a replacement send, got %d", len(messenger.sends))
	}
	newID, ok := store.updates["p-2"]
	if !ok {
		t.Fatal("context was not repointed at the new message")
	}
	if stored := store.contexts["p-2"]; stored.MessageID != newID {
		t.Errorf("stored message id %d, want %d", stored.MessageID, newID)
	}
}

func TestFailedEventKeepsContext(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-3"] = &repository.PaymentContext{TelegramID: 42, SubscriptionID: 7, MessageID: 500}
	messenger := &fakeMessenger{}

	_, err := testReconciler(t, store, messenger, nil, nil).HandlePaymentEvent(context.Background(), PaymentEvent{
		PaymentID: "p-3",
		Status:    "failed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(store.cleared) != 0 {
		t.Errorf("failed payment must keep its context, cleared %v", store.cleared)
	}
	if len(messenger.edits) != 1 {
		t.Errorf("expected one edit, got %d", len(messenger.edits))
	}
}

func TestRenewalEventSendsNudge(t *testing.T) {
	messenger := &fakeMessenger{}

	err := testReconciler(t, newFakeStore(), messenger, nil, nil).HandleRenewalEvent(context.Background(), RenewalEvent{
		TelegramID:     42,
		SubscriptionID: 7,
		ServiceName:    "Gym",
		UntilDate:      "2025-02-01T00:00:00Z",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(messenger.sends) != 1 {
		t.Fatalf("expected one send, got %d", len(messenger.sends))
	}
	if !strings.Contains(messenger.sends[0].text, "Gym") {
		t.Errorf("nudge missing service name: %q", messenger.sends[0].text)
	}
}

func testServer(t *testing.T, store *fakeStore, messenger *fakeMessenger) http.Handler {
	t.Helper()

	config := &configuration.Config{}
	config.Webhook.InternalToken = "secret"
	config.Webhook.NotifyPath = "/internal/payments/notify"
	config.Localization.SupportedLanguages = []string{"en", "ru"}
	config.Localization.DefaultLanguage = "en"

	reconciler := testReconciler(t, store, messenger, nil, nil)
	return NewServer(reconciler, config, tracing.NewConsoleLogger()).Handler()
}

func postJSON(handler http.Handler, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Internal-Token", token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookRejectsBadToken(t *testing.T) {
	handler := testServer(t, newFakeStore(), &fakeMessenger{})

	resp := postJSON(handler, "/internal/payments/notify", "wrong", `{"payment_id": "p", "status": "paid"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.Code)
	}
}

func TestWebhookRejectsMissingFields(t *testing.T) {
	handler := testServer(t, newFakeStore(), &fakeMessenger{})

	resp := postJSON(handler, "/internal/payments/notify", "secret", `{"payment_id": "p"}`)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.Code)
	}
}

func TestWebhookAcknowledgesUnknownPayment(t *testing.T) {
	handler := testServer(t, newFakeStore(), &fakeMessenger{})

	resp := postJSON(handler, "/internal/payments/notify", "secret", `{"payment_id": "ghost", "status": "paid"}`)
	if resp.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", resp.Code)
	}
}

func TestWebhookProcessesPaidEvent(t *testing.T) {
	store := newFakeStore()
	store.contexts["p-1"] = &repository.PaymentContext{TelegramID: 42, MessageID: 500}
	messenger := &fakeMessenger{}
	handler := testServer(t, store, messenger)

	resp := postJSON(handler, "/internal/payments/notify", "secret",
		`{"payment_id": "p-1", "status": "paid"}`)
	if resp.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Code)
	}
	if len(messenger.edits) != 1 {
		t.Errorf("expected the status message edited, got %d edits", len(messenger.edits))
	}
}

func TestWebhookRenewalEndpoint(t *testing.T) {
	messenger := &fakeMessenger{}
	handler := testServer(t, newFakeStore(), messenger)

	resp := postJSON(handler, "/internal/notifications/renew", "secret",
		`{"tg_id": 42, "subscription_id": 7, "service_name": "Gym", "until_date": "2025-02-01T00:00:00Z"}`)
	if resp.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.Code)
	}
	if len(messenger.sends) != 1 {
		t.Errorf("expected one nudge sent, got %d", len(messenger.sends))
	}
}
