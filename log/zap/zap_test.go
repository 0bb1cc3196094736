package zap

import (
	"errors"
	"testing"

	"github.com/unkn0wn-root/jsoner"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLoggerFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := ZapLogger{L: zap.New(core)}

	l.Debug("decode fallback", jsoner.Fields{"type": "geo.Point", "reason": "unresolved_type"})
	l.Warn("self heal", jsoner.Fields{"err": errors.New("bad frame")})
	l.Error("no fields", nil)

	entries := logs.AllUntimed()
	if len(entries) != 3 {
		t.Fatalf("got %d entries", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["type"] != "geo.Point" || ctx["reason"] != "unresolved_type" {
		t.Fatalf("fields = %v", ctx)
	}
	if entries[1].Level != zapcore.WarnLevel || entries[1].ContextMap()["err"] != "bad frame" {
		t.Fatalf("warn entry = %+v", entries[1])
	}
	if len(entries[2].Context) != 0 {
		t.Fatalf("nil fields produced context %v", entries[2].Context)
	}
}
