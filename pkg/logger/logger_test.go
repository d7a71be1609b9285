package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerErrorIncludesContextFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})

	ctx := context.Background()
	ctx = log.WithRequestID(ctx, "req-123")

	log.Error(ctx, "boom", errors.New("boom"))

	if !bytes.Contains(buf.Bytes(), []byte("\"request_id\"")) {
		t.Fatalf("expected request_id to be preserved; entry=%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("\"stack\"")) {
		t.Fatalf("expected stack trace on error; entry=%s", buf.String())
	}
}

func TestLoggerWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf, WarnStack: true})
	log.Warn(context.Background(), "warny")
	if !bytes.Contains(buf.Bytes(), []byte("\"stack\"")) {
		t.Fatalf("expected stack when warn stack enabled")
	}

	buf.Reset()
	quiet := New(Options{ServiceName: "test", Level: ParseLevel("debug"), Output: buf})
	quiet.Warn(context.Background(), "warny")
	if bytes.Contains(buf.Bytes(), []byte("\"stack\"")) {
		t.Fatalf("did not expect stack when warn stack disabled")
	}
}

func TestWithSessionIDTruncates(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	ctx := log.WithSessionID(context.Background(), "0123456789abcdef")
	log.Info(ctx, "hello")

	entry := buf.String()
	if !strings.Contains(entry, `"session_id":"01234567"`) {
		t.Fatalf("expected truncated session id; entry=%s", entry)
	}
	if strings.Contains(entry, "0123456789abcdef") {
		t.Fatalf("full session id leaked; entry=%s", entry)
	}
}

func TestParseLevelDefaults(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("expected default info level, got %v", lvl)
	}
	if lvl := ParseLevel("invalid"); lvl != zerolog.InfoLevel {
		t.Fatalf("invalid level should fallback to info, got %v", lvl)
	}
	if lvl := ParseLevel(" DEBUG "); lvl != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", lvl)
	}
}

func TestFieldsTravelOnContext(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Env: "dev", Output: buf})

	ctx := log.WithFields(context.Background(), map[string]any{"order_id": "o-1", "attempt": 2})
	ctx = log.WithField(ctx, "carrier", "dhl")
	log.Info(ctx, "confirmed")

	entry := buf.String()
	for _, want := range []string{`"env":"dev"`, `"order_id":"o-1"`, `"attempt":2`, `"carrier":"dhl"`} {
		if !strings.Contains(entry, want) {
			t.Fatalf("expected %s in entry=%s", want, entry)
		}
	}
	if strings.Index(entry, `"attempt"`) > strings.Index(entry, `"order_id"`) {
		t.Fatalf("expected fields in key order; entry=%s", entry)
	}

	buf.Reset()
	log.Info(context.Background(), "bare")
	if strings.Contains(buf.String(), "order_id") {
		t.Fatalf("fields leaked to an unrelated context; entry=%s", buf.String())
	}
}

func TestContextLoggerIsVisibleToZerolog(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf})
	ctx := log.WithRequestID(context.Background(), "req-9")

	zerolog.Ctx(ctx).Info().Msg("direct")
	if !strings.Contains(buf.String(), `"request_id":"req-9"`) {
		t.Fatalf("expected zerolog.Ctx to carry request_id; entry=%s", buf.String())
	}
}
