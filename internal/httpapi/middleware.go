package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/queryobject"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-Id"

type requestIDKey struct{}

type queryObjectKey struct{}

// queryObjectValue distinguishes "no query object" from "middleware not run".
type queryObjectValue struct {
	q *queryobject.QueryObject
	d *dialect.Dialect
}

// TargetFunc yields the dialect Query Objects are converted to.
// It is called once per request.
type TargetFunc func() *dialect.Dialect

// Static always targets d.
func Static(d *dialect.Dialect) TargetFunc {
	return func() *dialect.Dialect { return d }
}

// RequestID reuses the client's X-Request-Id or assigns a fresh one.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// RequestIDFrom returns the id assigned by RequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// LogRequests logs one line per request at debug level.
func LogRequests(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", RequestIDFrom(r.Context()),
			)
		})
	}
}

// RawFacetsFromRequest reads the five facets from the query string.
// A missing parameter is absent; when repeated, the first value wins.
// Values longer than maxLen bytes are rejected when maxLen is positive.
func RawFacetsFromRequest(r *http.Request, maxLen int) (queryobject.RawFacets, error) {
	values := r.URL.Query()
	var raw queryobject.RawFacets
	for _, facet := range queryobject.AllFacets {
		vs, ok := values[string(facet)]
		if !ok || len(vs) == 0 {
			continue
		}
		text := vs[0]
		if maxLen > 0 && len(text) > maxLen {
			return queryobject.RawFacets{}, &queryobject.FacetDecodeError{
				Facet:   facet,
				Message: "value is longer than the allowed " + strconv.Itoa(maxLen) + " bytes",
			}
		}
		raw.Set(facet, &text)
	}
	return raw, nil
}

// QueryObjectMiddleware parses the facets of every request into a Query Object
// converted to the target dialect, and stores it in the request context.
// A {dialect} route parameter overrides the target.
// Invalid input is answered with 400 and the handler is not called.
func QueryObjectMiddleware(target TargetFunc, maxLen int, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := target()
			if name := dialectParam(r); name != "" {
				var ok bool
				if d, ok = dialect.Get(name); !ok {
					writeError(w, r, logger, notFoundError("dialect", name))
					return
				}
			}

			q, err := parseRequest(r, d, maxLen)
			if err != nil {
				if !queryobject.IsClientError(err) {
					logger.Error("failed to build query object", "error", err)
					writeError(w, r, logger, unexpectedError())
					return
				}
				logger.Info("rejected query object", "error", err, "request_id", RequestIDFrom(r.Context()))
				writeError(w, r, logger, argumentError(err))
				return
			}

			ctx := context.WithValue(r.Context(), queryObjectKey{}, queryObjectValue{q: q, d: d})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// dialectParam is the optional {dialect} route parameter.
func dialectParam(r *http.Request) string {
	return chi.URLParam(r, "dialect")
}

func parseRequest(r *http.Request, d *dialect.Dialect, maxLen int) (*queryobject.QueryObject, error) {
	raw, err := RawFacetsFromRequest(r, maxLen)
	if err != nil {
		return nil, err
	}
	q, err := queryobject.Parse(raw)
	if err != nil {
		return nil, err
	}
	return queryobject.Convert(q, d.Name)
}

// QueryObjectFrom returns the Query Object stored by QueryObjectMiddleware.
// The object is nil when the request gave no facet; ok is false when the
// middleware did not run.
func QueryObjectFrom(ctx context.Context) (q *queryobject.QueryObject, ok bool) {
	v, ok := ctx.Value(queryObjectKey{}).(queryObjectValue)
	return v.q, ok
}
