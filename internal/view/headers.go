package view

import "net/http"

// Headers is a live proxy over the downstream transport's header table:
// reads and enumeration reflect whatever is currently set on the
// transport, writes go straight through, and a handful of transport
// utilities (trailers, flush, early hints, write-head) pass through
// unchanged. It holds no state of its own, so creating one is free and
// Model.Headers() may return a fresh value on every call.
type Headers struct {
	m *Model
}

// Get returns the first value for name, or "" if unset.
func (h *Headers) Get(name string) string {
	return h.m.downstream.Header().Get(name)
}

// Set overwrites any existing values for name.
func (h *Headers) Set(name, value string) {
	h.m.downstream.Header().Set(name, value)
}

// Add appends value to name's existing values rather than replacing them.
func (h *Headers) Add(name, value string) {
	h.m.downstream.Header().Add(name, value)
}

// Del removes name entirely.
func (h *Headers) Del(name string) {
	h.m.downstream.Header().Del(name)
}

// Names returns every header name currently set on the transport.
func (h *Headers) Names() []string {
	names := make([]string, 0, len(h.m.downstream.Header()))
	for name := range h.m.downstream.Header() {
		names = append(names, name)
	}
	return names
}

// AddTrailer declares name as a trailer to be populated after the body,
// passing through to the transport's trailer mechanism.
func (h *Headers) AddTrailer(name string) {
	h.m.downstream.Header().Add("Trailer", name)
}

// SetTrailer sets a trailer value once the body has been written. The
// caller is responsible for having declared it with AddTrailer first.
func (h *Headers) SetTrailer(name, value string) {
	http.Header(h.m.downstream.Header()).Set(http.TrailerPrefix+name, value)
}

// Flush flushes any buffered bytes to the transport immediately, useful
// for dispatchers that write partial bodies ahead of the final Present.
func (h *Headers) Flush() {
	if f, ok := h.m.downstream.(http.Flusher); ok {
		f.Flush()
	}
}

// WriteEarlyHints sends a 103 Early Hints response carrying the headers
// currently set, without ending the response.
func (h *Headers) WriteEarlyHints() {
	if rw, ok := h.m.downstream.(interface{ WriteHeader(int) }); ok {
		rw.WriteHeader(http.StatusEarlyHints)
	}
}

// WriteHead flushes the status line and current headers without a body,
// marking headers as sent so a later Present only writes the body.
func (h *Headers) WriteHead(status int) {
	h.m.mu.Lock()
	defer h.m.mu.Unlock()
	if h.m.headersSentLocked() {
		return
	}
	h.m.downstream.WriteHeader(status)
}

// HeadersSent reports whether headers have already gone out.
func (h *Headers) HeadersSent() bool {
	return h.m.HeadersSent()
}
