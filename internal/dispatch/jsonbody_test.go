package dispatch

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/session"
)

func TestJSONBody_DecodesValidJSON(t *testing.T) {
	req := session.NewRequest(httptest.NewRequest("POST", "/x", strings.NewReader(`{"a":1}`)))
	sess := session.New("T1", req, httptest.NewRecorder(), &session.Stats{}, nil)

	if err := JSONBody().Dispatch(context.Background(), req, sess); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	body, ok := req.Body.(map[string]any)
	if !ok {
		t.Fatalf("Body type = %T, want map[string]any", req.Body)
	}
	if body["a"] != float64(1) {
		t.Errorf("Body[a] = %v, want 1", body["a"])
	}
}

func TestJSONBody_EmptyBody(t *testing.T) {
	req := session.NewRequest(httptest.NewRequest("POST", "/x", strings.NewReader("")))
	sess := session.New("T1", req, httptest.NewRecorder(), &session.Stats{}, nil)

	if err := JSONBody().Dispatch(context.Background(), req, sess); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	body, ok := req.Body.(map[string]any)
	if !ok || len(body) != 0 {
		t.Errorf("Body = %v, want empty map", req.Body)
	}
}

func TestJSONBody_InvalidJSON(t *testing.T) {
	req := session.NewRequest(httptest.NewRequest("POST", "/x", strings.NewReader("not json")))
	sess := session.New("T1", req, httptest.NewRecorder(), &session.Stats{}, nil)

	err := JSONBody().Dispatch(context.Background(), req, sess)
	var gwErr *gwerrors.Error
	if !errors.As(err, &gwErr) || gwErr.Kind != gwerrors.KindInvalidBody {
		t.Fatalf("error = %v, want *gwerrors.Error{KindInvalidBody}", err)
	}
}
