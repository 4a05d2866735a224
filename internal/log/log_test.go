package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewTagsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Component: ComponentEngine,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})

	logger.Info("hello", FieldTemplateID, "tpl-1")

	out := buf.String()
	if strings.Count(out, "component=engine") != 1 {
		t.Errorf("log line = %q, want one component=engine", out)
	}
	if !strings.Contains(out, "template_id=tpl-1") {
		t.Errorf("log line = %q, want template_id", out)
	}
	if logger.Component() != ComponentEngine {
		t.Errorf("Component() = %q, want %q", logger.Component(), ComponentEngine)
	}
}

func TestFieldsToSliceIsSorted(t *testing.T) {
	fields := NewFields().
		WithOperation(OpTopUp).
		WithTemplate("tpl-1").
		WithError(errors.New("boom")).
		WithRequestID("")

	got := fields.ToSlice()
	want := []any{FieldError, "boom", FieldOperation, OpTopUp, FieldTemplateID, "tpl-1"}
	if len(got) != len(want) {
		t.Fatalf("ToSlice() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ToSlice()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMiddlewareStoresLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)}).With(FieldRequestID, "req_42")

	handler := Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		FromContext(r.Context()).Info("inside")
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(buf.String(), "request_id=req_42") {
		t.Errorf("log output = %q, want request id", buf.String())
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Handler: slog.NewTextHandler(&buf, nil)})

	logger.WithFields(NewFields().WithTemplate("tpl-9")).Info("hello")

	if !strings.Contains(buf.String(), "template_id=tpl-9") {
		t.Errorf("log output = %q, want template id", buf.String())
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()).Logger == nil {
		t.Error("FromContext() returned nil logger")
	}
}

func TestWithComponentReplacesComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentBackend, Handler: slog.NewTextHandler(&buf, nil)}).
		With(FieldRequestID, "req_7")

	amqpLogger := logger.WithComponent(ComponentAMQP)
	amqpLogger.Info("hello")

	out := buf.String()
	if strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=amqp") {
		t.Errorf("log line = %q, want only component=amqp", out)
	}
	if !strings.Contains(out, "request_id=req_7") {
		t.Errorf("log line = %q, want attributes added before WithComponent", out)
	}
	if amqpLogger.Component() != ComponentAMQP {
		t.Errorf("Component() = %q, want %q", amqpLogger.Component(), ComponentAMQP)
	}
}
