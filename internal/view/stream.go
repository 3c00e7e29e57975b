package view

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
)

// Stream is the lazily-constructed SSE transform exposed as the view's
// "stream" field. The first access to it (via Model.Stream) sets the
// content-type header, after which every Write frames its argument as
// "data: <json>\n\n".
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newStream(w http.ResponseWriter) *Stream {
	flusher, _ := w.(http.Flusher)
	return &Stream{w: w, flusher: flusher}
}

// Write encodes v as JSON and frames it as an SSE "data:" record. Encoder
// errors abort with gwerrors.KindChannelTransformError.
func (s *Stream) Write(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return gwerrors.New(gwerrors.KindChannelTransformError, "failed to encode SSE record").WithCause(err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", payload); err != nil {
		return gwerrors.New(gwerrors.KindChannelTransformError, "failed to write SSE record").WithCause(err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}
