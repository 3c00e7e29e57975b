package view

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

func TestNewModel_DefaultsStatus200(t *testing.T) {
	m := NewModel(httptest.NewRecorder())
	if m.Status() != 200 {
		t.Errorf("Status() = %d, want 200", m.Status())
	}
}

func TestModel_SetBody_DeepMerge(t *testing.T) {
	m := NewModel(httptest.NewRecorder())
	m.SetBody(map[string]any{"a": 1, "nested": map[string]any{"x": 1}})
	m.SetBody(map[string]any{"b": 2, "nested": map[string]any{"y": 2}})

	body := m.Body()
	if body["a"] != 1 || body["b"] != 2 {
		t.Errorf("Body() = %v, want a=1 b=2", body)
	}
	nested, ok := body["nested"].(map[string]any)
	if !ok || nested["x"] != 1 || nested["y"] != 2 {
		t.Errorf("nested merge = %v, want x=1 y=2", body["nested"])
	}
}

func TestModel_SetStatus(t *testing.T) {
	m := NewModel(httptest.NewRecorder())
	m.SetStatus(404)
	if m.Status() != 404 {
		t.Errorf("Status() = %d, want 404", m.Status())
	}
}

func TestModel_Present_WritesJSONBody(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	m.SetBody(map[string]any{"ok": true})

	if err := m.Present(); err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if rec.Code != 200 {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if got["ok"] != true {
		t.Errorf("body = %v, want ok=true", got)
	}
}

func TestModel_Present_NoopAfterFirstCall(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	m.SetBody(map[string]any{"n": 1})

	if err := m.Present(); err != nil {
		t.Fatalf("first Present() error: %v", err)
	}
	firstLen := rec.Body.Len()

	m.SetStatus(500) // should have no visible effect post-Present
	if err := m.Present(); err != nil {
		t.Fatalf("second Present() error: %v", err)
	}
	if rec.Body.Len() != firstLen {
		t.Errorf("second Present() wrote more body bytes; got len %d, want %d", rec.Body.Len(), firstLen)
	}
	if rec.Code != 200 {
		t.Errorf("status changed after ended: %d, want 200", rec.Code)
	}
}

func TestModel_Present_PreservesExplicitContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	m.Headers().Set("Content-Type", "text/plain")

	if err := m.Present(); err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/plain" {
		t.Errorf("Content-Type = %q, want text/plain", ct)
	}
}

func TestModel_PresentError_WritesStructuredBody(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	err := gwerrors.New(gwerrors.KindNoRoute, "no route matched").WithStatus(404).WithHeader("Allow", "GET")

	if presentErr := m.PresentError(err); presentErr != nil {
		t.Fatalf("PresentError() error: %v", presentErr)
	}
	if rec.Code != 404 {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET" {
		t.Errorf("Allow header = %q, want GET", allow)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.Status != 404 || body.Error != "no route matched" || body.Code != string(gwerrors.KindNoRoute) {
		t.Errorf("errorBody = %+v, unexpected", body)
	}
}

func TestModel_PresentError_PreservesPropertyErrorCode(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)

	_, getErr := m.Get("bogus")
	if presentErr := m.PresentError(getErr); presentErr != nil {
		t.Fatalf("PresentError() error: %v", presentErr)
	}
	if rec.Code != 500 {
		t.Errorf("status = %d, want 500", rec.Code)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal error body: %v", err)
	}
	if body.Code != string(gwerrors.KindPropertyNotReadable) {
		t.Errorf("errorBody.Code = %q, want %q", body.Code, gwerrors.KindPropertyNotReadable)
	}
}

func TestModel_PresentError_NoopAfterPresent(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	if err := m.Present(); err != nil {
		t.Fatalf("Present() error: %v", err)
	}
	if err := m.PresentError(errors.New("too late")); err != nil {
		t.Fatalf("PresentError() error: %v", err)
	}
	if rec.Code != 200 {
		t.Errorf("status changed by late PresentError: %d, want 200", rec.Code)
	}
}

func TestModel_Get(t *testing.T) {
	m := NewModel(httptest.NewRecorder())
	m.SetBody(map[string]any{"k": "v"})

	body, err := m.Get("body")
	if err != nil {
		t.Fatalf("Get(body) error: %v", err)
	}
	if bm, ok := body.(map[string]any); !ok || bm["k"] != "v" {
		t.Errorf("Get(body) = %v, want map with k=v", body)
	}

	if _, err := m.Get("bogus"); err == nil {
		t.Error("Get(bogus) expected error, got nil")
	} else {
		var perr *PropertyError
		if !errors.As(err, &perr) || perr.Kind != gwerrors.KindPropertyNotReadable {
			t.Errorf("Get(bogus) error = %v, want *PropertyError{KindPropertyNotReadable}", err)
		}
	}
}

func TestModel_Set(t *testing.T) {
	m := NewModel(httptest.NewRecorder())

	if err := m.Set("status", 201); err != nil {
		t.Fatalf("Set(status, 201) error: %v", err)
	}
	if m.Status() != 201 {
		t.Errorf("Status() = %d, want 201", m.Status())
	}

	if err := m.Set("body", map[string]any{"a": 1}); err != nil {
		t.Fatalf("Set(body, ...) error: %v", err)
	}
	if m.Body()["a"] != 1 {
		t.Errorf("Body() = %v, want a=1", m.Body())
	}

	if err := m.Set("headers", "not-a-header-table"); err == nil {
		t.Error("Set(headers, ...) expected error, got nil")
	} else {
		var perr *PropertyError
		if !errors.As(err, &perr) || perr.Kind != gwerrors.KindPropertyNotWritable {
			t.Errorf("Set(headers, ...) error = %v, want *PropertyError{KindPropertyNotWritable}", err)
		}
	}

	if err := m.Set("status", "not-an-int"); err == nil {
		t.Error("Set(status, non-int) expected error, got nil")
	}
}

func TestModel_HeadersSent(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	if m.HeadersSent() {
		t.Error("HeadersSent() = true before any write, want false")
	}
	m.Headers().WriteHead(200)
	if !m.HeadersSent() {
		t.Error("HeadersSent() = false after WriteHead, want true")
	}
}

func TestModel_Stream_SetsEventStreamContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	m := NewModel(rec)
	s1 := m.Stream()
	s2 := m.Stream()
	if s1 != s2 {
		t.Error("Stream() returned different instances on repeated calls")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}
}
