// Package view implements the outgoing-response façade dispatchers mutate
// to produce a response: a closed four-field model (body/headers/status/
// stream) plus the presentation logic that serializes it to the transport.
package view

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

// Model is the per-session view. Dispatchers reach it through Session.View
// and use the typed accessors below; the string-keyed Get/Set exists only
// to reproduce strict-property-guard scenarios against a dynamic property
// bag and should not be used by ordinary dispatchers.
type Model struct {
	mu         sync.Mutex
	downstream http.ResponseWriter
	body       map[string]any
	status     int
	stream     *Stream
	ended      bool
}

// NewModel creates a view bound to the given downstream response writer.
func NewModel(w http.ResponseWriter) *Model {
	return &Model{downstream: &trackingWriter{ResponseWriter: w}, status: http.StatusOK}
}

// Body returns the current aggregate body.
func (m *Model) Body() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.body
}

// SetBody deep-merges partial into the existing body: map values merge
// key-wise, non-map values overwrite. Multiple dispatchers may each
// contribute a partial body without coordinating with each other.
func (m *Model) SetBody(partial map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.body = deepMerge(m.body, partial)
}

// Status returns the currently-set status code (200 until changed).
func (m *Model) Status() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// SetStatus records the status code to use once headers are flushed.
func (m *Model) SetStatus(code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = code
}

// Headers returns the live header proxy over the downstream transport.
func (m *Model) Headers() *Headers {
	return &Headers{m: m}
}

// Stream returns the lazily constructed SSE stream, building it (and
// setting content-type: text/event-stream) on first access. Subsequent
// calls return the same object.
func (m *Model) Stream() *Stream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stream == nil {
		m.downstream.Header().Set("Content-Type", "text/event-stream")
		m.stream = newStream(m.downstream)
	}
	return m.stream
}

// HeadersSent reports whether the response headers have already been
// written to the transport.
func (m *Model) HeadersSent() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ended || m.headersSentLocked()
}

func (m *Model) headersSentLocked() bool {
	if tw, ok := m.downstream.(*trackingWriter); ok {
		return tw.written
	}
	return false
}

// Get implements the dynamic, string-keyed read used to reproduce
// strict-property-guard scenarios.
func (m *Model) Get(name string) (any, error) {
	switch name {
	case "body":
		return m.Body(), nil
	case "headers":
		return m.Headers(), nil
	case "status":
		return m.Status(), nil
	case "stream":
		return m.Stream(), nil
	default:
		return nil, notReadable(name)
	}
}

// Set implements the dynamic, string-keyed write used to reproduce
// strict-property-guard scenarios. Only "body" and "status" are
// writable slots; "headers" and "stream" must be mutated through
// their own accessors, never replaced wholesale.
func (m *Model) Set(name string, value any) error {
	switch name {
	case "body":
		partial, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("view: body must be a map[string]any, got %T", value)
		}
		m.SetBody(partial)
		return nil
	case "status":
		code, ok := value.(int)
		if !ok {
			return fmt.Errorf("view: status must be an int, got %T", value)
		}
		m.SetStatus(code)
		return nil
	default:
		return notWritable(name)
	}
}

// Present writes the response after a successful dispatch chain. It is a
// no-op if the downstream has already ended. If headers have not been
// sent and content-type is unset, it defaults to application/json, then
// serializes the body as JSON and ends the downstream.
func (m *Model) Present() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return nil
	}
	m.ended = true

	if !m.headersSentLocked() {
		if m.downstream.Header().Get("Content-Type") == "" {
			m.downstream.Header().Set("Content-Type", "application/json")
		}
		m.downstream.WriteHeader(m.status)
	}

	return json.NewEncoder(m.downstream).Encode(m.body)
}

// errorBody is the wire shape of an error response.
type errorBody struct {
	Status  int      `json:"status"`
	Error   string   `json:"error"`
	Code    string   `json:"code,omitempty"`
	Details []string `json:"details,omitempty"`
}

// PresentError writes an error response on chain rejection or abortion.
// No-op if the downstream has already ended. Runs at most once.
func (m *Model) PresentError(err error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ended {
		return nil
	}
	m.ended = true

	status, code := gwerrors.Describe(err)

	var gwErr *gwerrors.Error
	asGatewayError(err, &gwErr)

	if !m.headersSentLocked() {
		if gwErr != nil {
			for name, values := range gwErr.Headers {
				for _, v := range values {
					m.downstream.Header().Add(name, v)
				}
			}
		}
		if m.downstream.Header().Get("Content-Type") == "" {
			m.downstream.Header().Set("Content-Type", "application/json")
		}
		m.downstream.WriteHeader(status)
	}

	body := errorBody{
		Status:  status,
		Error:   gwerrors.Message(err),
		Code:    code,
		Details: gwerrors.CauseChainDetails(err),
	}
	return json.NewEncoder(m.downstream).Encode(body)
}

// asGatewayError looks for a *gwerrors.Error anywhere in err's chain,
// mirroring errors.As without importing "errors" for this one call site.
func asGatewayError(err error, target **gwerrors.Error) bool {
	for err != nil {
		if e, ok := err.(*gwerrors.Error); ok {
			*target = e
			return true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = unwrapper.Unwrap()
	}
	return false
}
