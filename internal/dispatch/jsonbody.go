package dispatch

import (
	"context"
	"encoding/json"

	"github.com/dispatchgate/multiplex/internal/gwerrors"
	"github.com/dispatchgate/multiplex/internal/session"
)

// JSONBody awaits the still-pending raw body, decodes it as JSON into a
// map[string]any and replaces req.Body with the decoded value. Decode
// failures abort the chain with kind InvalidBody/400. Dispatchers
// further down the chain see req.Body as a map[string]any rather than
// the *session.PendingBody RawBody/BodyReader expect.
func JSONBody() session.Dispatcher {
	return session.DispatcherFunc(func(ctx context.Context, req *session.Request, sess *session.Session) error {
		raw, err := req.RawBody(ctx)
		if err != nil {
			return gwerrors.New(gwerrors.KindInvalidBody, "failed to read request body").WithCause(err)
		}
		if len(raw) == 0 {
			req.Body = map[string]any{}
			return nil
		}
		var decoded map[string]any
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return gwerrors.New(gwerrors.KindInvalidBody, "request body is not valid JSON").
				WithCause(err)
		}
		req.Body = decoded
		return nil
	})
}
