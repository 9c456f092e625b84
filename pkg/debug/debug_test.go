package debug

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(Config{Level: "loud"}); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestInitJSON(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)
	SetEnabled(false)

	if err := Init(Config{Level: "warn", Format: "json"}); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if Enabled() {
		t.Error("warn level should not enable debug helpers")
	}
}

func TestHelpersWriteWhenEnabled(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	sugar.Store(zap.New(core).Sugar())
	defer sugar.Store(nil)

	prev := Enabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	Log("hidden %d", 1)
	LogTiming("hidden", time.Millisecond)
	if logs.Len() != 0 {
		t.Fatalf("expected no entries while disabled, got %d", logs.Len())
	}

	SetEnabled(true)
	Log("visible %d", 2)
	LogIf(false, "skipped")
	LogIf(true, "kept")
	LogTiming("op", time.Millisecond)
	LogEnterExit("fn")()
	Dump("value", 3)

	if got := logs.FilterMessage("visible 2").Len(); got != 1 {
		t.Errorf("expected formatted message, got %d entries", got)
	}
	if logs.FilterMessage("skipped").Len() != 0 {
		t.Error("LogIf(false) should not log")
	}
	if logs.FilterMessage("timing").Len() != 1 {
		t.Error("expected one timing entry")
	}
	if logs.Len() != 6 {
		t.Errorf("expected 6 entries, got %d", logs.Len())
	}
}
