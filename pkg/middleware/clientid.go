package middleware

import (
	"net/http"
	"regexp"

	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/httputil"
	"github.com/eduardolevy255/Paginadeavalia-esdeproduto/pkg/logger"
)

// ClientIDHeader carries the opaque identifier of the calling client, the
// server-side stand-in for a browser profile. Active user, pending delete and
// edit draft are all scoped to it.
const ClientIDHeader = "X-Client-ID"

var clientIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// ClientID rejects requests without a well-formed X-Client-ID header with 400
// and stores the id in the request context.
func ClientID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(ClientIDHeader)
		if id == "" {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: ClientIDHeader + " header is required"},
			})
			return
		}
		if !clientIDPattern.MatchString(id) {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: ClientIDHeader + " header is malformed"},
			})
			return
		}
		next.ServeHTTP(w, r.WithContext(logger.WithClientID(r.Context(), id)))
	})
}

// ClientIDFromRequest returns the client id placed in context by ClientID.
func ClientIDFromRequest(r *http.Request) string {
	return logger.ClientIDFromContext(r.Context())
}
