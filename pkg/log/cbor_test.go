package log

import (
	"bytes"
	"testing"
	"time"
)

func TestEncodeDecodeSettleEvent(t *testing.T) {
	ts := time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC)
	event := Event{
		Timestamp: ts,
		RunID:     "run-1",
		Settle:    7,
		Category:  CategorySettle,
		SettleInfo: &SettleEvent{
			Rounds:      3,
			Pushes:      5,
			Invocations: 2,
			Duration:    1500 * time.Microsecond,
			Initial:     true,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if !decoded.Timestamp.Equal(ts) {
		t.Errorf("Timestamp: got %v, want %v", decoded.Timestamp, ts)
	}
	if decoded.Settle != 7 {
		t.Errorf("Settle: got %d, want 7", decoded.Settle)
	}
	if decoded.SettleInfo == nil {
		t.Fatal("SettleInfo is nil")
	}
	if *decoded.SettleInfo != *event.SettleInfo {
		t.Errorf("SettleInfo: got %+v, want %+v", *decoded.SettleInfo, *event.SettleInfo)
	}
	if decoded.Push != nil || decoded.Invoke != nil || decoded.Error != nil {
		t.Error("unexpected payloads set")
	}
}

func TestEncodeUsesIntegerKeys(t *testing.T) {
	data, err := EncodeEvent(Event{RunID: "abc", Category: CategoryPush})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if bytes.Contains(data, []byte("RunID")) || bytes.Contains(data, []byte("Category")) {
		t.Error("encoded event contains field names, want integer keys")
	}
}

func TestDecodePushValue(t *testing.T) {
	data, err := EncodeEvent(Event{
		Category: CategoryPush,
		Push: &PushEvent{
			Kind:    SignalKindState,
			Source:  "a/0",
			Target:  "b/0",
			Count:   1,
			Changed: true,
			Value:   true,
		},
	})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}
	if decoded.Push == nil {
		t.Fatal("Push is nil")
	}
	if decoded.Push.Value != true {
		t.Errorf("Value: got %v, want true", decoded.Push.Value)
	}
	if decoded.Push.Source != "a/0" || decoded.Push.Target != "b/0" {
		t.Errorf("endpoints: got %s -> %s", decoded.Push.Source, decoded.Push.Target)
	}
}

func TestDecodeInvalid(t *testing.T) {
	if _, err := DecodeEvent([]byte{0xff, 0x00}); err == nil {
		t.Error("expected error for invalid CBOR")
	}
}
