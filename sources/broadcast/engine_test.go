package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"clubify/sources/configuration"
	"clubify/sources/gateway"
	"clubify/sources/tracing"
)

type fakeSource struct {
	pages     map[string]*gateway.RecipientsPage
	failAfter string
	calls     int
}

func (f *fakeSource) GetBroadcastRecipients(ctx context.Context, segment, cursor string, limit int) (*gateway.RecipientsPage, error) {
	f.calls++
	if f.failAfter != "" && cursor == f.failAfter {
		return nil, errors.New("backend down")
	}
	page, ok := f.pages[cursor]
	if !ok {
		return &gateway.RecipientsPage{}, nil
	}
	return page, nil
}

type fakeDeliverer struct {
	delivered []int64
	failIDs   map[int64]error
}

func (f *fakeDeliverer) DeliverText(ctx context.Context, chatID int64, text string) error {
	if err, ok := f.failIDs[chatID]; ok {
		return err
	}
	f.delivered = append(f.delivered, chatID)
	return nil
}

func testEngine(source RecipientSource, deliverer Deliverer) *Engine {
	config := &configuration.Config{}
	config.Broadcast.BatchSize = 3
	config.Broadcast.DeliveryRPS = 2

	engine := NewEngine(source, deliverer, config, tracing.NewConsoleLogger(), nil)
	engine.sleep = func(time.Duration) {}
	return engine
}

func TestRunTalliesAcrossPages(t *testing.T) {
	source := &fakeSource{pages: map[string]*gateway.RecipientsPage{
		"":   {Items: []int64{1, 2, 3}, NextCursor: "c1"},
		"c1": {Items: []int64{4, 5}},
	}}
	deliverer := &fakeDeliverer{failIDs: map[int64]error{
		2: errors.New("telegram hiccup"),
		4: ErrRecipientUnavailable,
	}}

	report, err := testEngine(source, deliverer).Run(context.Background(), SegmentAll, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Delivered != 3 || report.Failed != 1 || report.Skipped != 1 {
		t.Errorf("unexpected report %+v", report)
	}
	if source.calls != 2 {
		t.Errorf("expected 2 page fetches, got %d", source.calls)
	}
}

func TestRunStopsOnEmptyPageWithCursor(t *testing.T) {
	source := &fakeSource{pages: map[string]*gateway.RecipientsPage{
		"":   {Items: []int64{1, 2}, NextCursor: "c1"},
		"c1": {Items: nil, NextCursor: "c1"},
	}}
	deliverer := &fakeDeliverer{}

	report, err := testEngine(source, deliverer).Run(context.Background(), SegmentAll, "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Delivered != 2 {
		t.Errorf("unexpected report %+v", report)
	}
	if source.calls != 2 {
		t.Errorf("expected the empty page to end the run, got %d fetches", source.calls)
	}
}

func TestRunFetchErrorPreservesTally(t *testing.T) {
	source := &fakeSource{
		pages: map[string]*gateway.RecipientsPage{
			"": {Items: []int64{1, 2}, NextCursor: "c1"},
		},
		failAfter: "c1",
	}
	deliverer := &fakeDeliverer{}

	report, err := testEngine(source, deliverer).Run(context.Background(), SegmentActiveSubs, "hello")
	if err == nil {
		t.Fatal("expected fetch error")
	}
	if report.Delivered != 2 {
		t.Errorf("expected page-one deliveries preserved, got %+v", report)
	}
}

func TestRunPacesDeliveries(t *testing.T) {
	source := &fakeSource{pages: map[string]*gateway.RecipientsPage{
		"": {Items: []int64{1, 2, 3, 4, 5}},
	}}
	engine := testEngine(source, &fakeDeliverer{})

	var pauses int
	engine.sleep = func(time.Duration) { pauses++ }

	if _, err := engine.Run(context.Background(), SegmentAll, "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// DeliveryRPS is 2: pauses after the 2nd and 4th delivery.
	if pauses != 2 {
		t.Errorf("expected 2 pauses, got %d", pauses)
	}
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	source := &fakeSource{pages: map[string]*gateway.RecipientsPage{
		"": {Items: []int64{1, 2, 3}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := testEngine(source, &fakeDeliverer{}).Run(ctx, SegmentAll, "hello")
	if err == nil {
		t.Fatal("expected context error")
	}
	if report.Delivered != 0 {
		t.Errorf("expected no deliveries after cancel, got %+v", report)
	}
}
