package httputil

import (
	"context"
	"net/http"

	"github.com/cohortclub/berger/internal/util/rand"
)

type reqIDKey struct{}

// WrapRequest attaches a fresh request ID to the request context, for log
// correlation across handler layers.
func WrapRequest(req *http.Request) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), reqIDKey{}, rand.InsecureID()))
}

func ExtractReqID(ctx context.Context) string {
	if s, ok := ctx.Value(reqIDKey{}).(string); ok {
		return s
	}
	return ""
}
