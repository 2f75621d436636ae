package domain

import (
	"testing"
)

func TestNewResult_DerivesCounts(t *testing.T) {
	res := NewResult(42, TriggerCreated, []ChannelOutcome{
		{Channel: ChannelMail, Kind: OutcomeNoContactInfo},
		{Channel: ChannelWhatsApp, Kind: OutcomeDelivered, ReceiptID: "wa-1"},
		{Channel: ChannelTelegram, Kind: OutcomeNotReady},
	})

	if res.Delivered != 1 || res.Failed != 0 || res.Skipped != 2 {
		t.Fatalf("counts = delivered=%d failed=%d skipped=%d", res.Delivered, res.Failed, res.Skipped)
	}
	if res.Timestamp.IsZero() {
		t.Fatal("timestamp must be stamped at construction")
	}
}

func TestNewResult_FailuresAreNotSkips(t *testing.T) {
	res := NewResult(7, TriggerCreated, []ChannelOutcome{
		{Channel: ChannelMail, Kind: OutcomeDeliveryFailed, Error: "smtp: timeout"},
		{Channel: ChannelWhatsApp, Kind: OutcomeRenderFailed, Error: "bad template"},
	})

	if res.Failed != 2 || res.Skipped != 0 {
		t.Fatalf("counts = failed=%d skipped=%d, want 2/0", res.Failed, res.Skipped)
	}
}

func TestFetchFailed(t *testing.T) {
	degenerate := NewResult(9, TriggerCreated, []ChannelOutcome{
		{Channel: ChannelArtifact, Kind: OutcomeFetchFailed, Error: "order not found"},
	})
	if !degenerate.FetchFailed() {
		t.Fatal("single fetch_failed outcome must read as a fetch failure")
	}

	normal := NewResult(9, TriggerCreated, []ChannelOutcome{
		{Channel: ChannelMail, Kind: OutcomeDelivered},
	})
	if normal.FetchFailed() {
		t.Fatal("a delivered result must not read as a fetch failure")
	}
}

func TestSummary(t *testing.T) {
	res := NewResult(42, TriggerCreated, []ChannelOutcome{
		{Channel: ChannelMail, Kind: OutcomeNoContactInfo},
		{Channel: ChannelWhatsApp, Kind: OutcomeDelivered},
	})

	want := "order 42: mail=no_contact_info whatsapp=delivered"
	if got := res.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestOrDefault(t *testing.T) {
	if got := OrDefault(nil); got != NotSpecified {
		t.Errorf("OrDefault(nil) = %q", got)
	}
	empty := ""
	if got := OrDefault(&empty); got != NotSpecified {
		t.Errorf("OrDefault(empty) = %q", got)
	}
	val := "1234-ABC"
	if got := OrDefault(&val); got != "1234-ABC" {
		t.Errorf("OrDefault(val) = %q", got)
	}
}
