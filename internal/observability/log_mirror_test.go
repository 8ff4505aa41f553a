package observability

import (
	"errors"
	"testing"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

func TestLogAttributes(t *testing.T) {
	attrs := logAttributes([]any{"game_id", "0022300001", "possessions", 201, 7, "x", "dangling"})
	if len(attrs) != 4 {
		t.Fatalf("expected 4 attributes, got %d", len(attrs))
	}
	if attrs[0].Key != "game_id" || attrs[0].Value.AsString() != "0022300001" {
		t.Fatalf("unexpected game_id attribute")
	}
	if attrs[1].Key != "possessions" || attrs[1].Value.AsInt64() != 201 {
		t.Fatalf("unexpected possessions attribute")
	}
	if attrs[2].Key != "arg_2" {
		t.Fatalf("expected positional key for non-string key, got %s", attrs[2].Key)
	}
	if attrs[3].Key != "dangling" || attrs[3].Value.Kind() != otellog.KindEmpty {
		t.Fatalf("unexpected dangling attribute")
	}
}

func TestLogValue(t *testing.T) {
	if v := logValue(map[string]int{"made_shot": 3}); v.AsString() != `{"made_shot":3}` {
		t.Fatalf("expected JSON encoding for maps, got %q", v.AsString())
	}
	if v := logValue([]string{"g1", "g2"}); v.Kind() != otellog.KindSlice || len(v.AsSlice()) != 2 {
		t.Fatalf("expected string slice value")
	}
	if v := logValue(errors.New("boom")); v.AsString() != "boom" {
		t.Fatalf("unexpected error value %q", v.AsString())
	}
	if v := logValue(1500 * time.Millisecond); v.AsString() != "1.5s" {
		t.Fatalf("unexpected duration value %q", v.AsString())
	}
	if v := logValue(nil); v.Kind() != otellog.KindEmpty {
		t.Fatalf("expected empty value for nil")
	}
}

func TestSeverityOf(t *testing.T) {
	cases := map[zapcore.Level]otellog.Severity{
		zapcore.DebugLevel: otellog.SeverityDebug,
		zapcore.InfoLevel:  otellog.SeverityInfo,
		zapcore.WarnLevel:  otellog.SeverityWarn,
		zapcore.ErrorLevel: otellog.SeverityError,
		zapcore.FatalLevel: otellog.SeverityFatal,
	}
	for level, want := range cases {
		if got := severityOf(level); got != want {
			t.Fatalf("severityOf(%s)=%v want=%v", level, got, want)
		}
	}
}
