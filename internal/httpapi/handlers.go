package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/leapstack-labs/leapquery/pkg/dialect"
	"github.com/leapstack-labs/leapquery/pkg/queryobject"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// QueryObjectResponse is the body of GET /query-object.
type QueryObjectResponse struct {
	Dialect     string                   `json:"dialect"`
	QueryObject *queryobject.QueryObject `json:"query_object"`
}

// DialectInfo describes one registered dialect.
type DialectInfo struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	ProjectionKey    string   `json:"projection_key"`
	MixedProjections bool     `json:"mixed_projections"`
	Keys             []string `json:"keys"`
	Default          bool     `json:"default"`
}

// SetupRoutes registers the API on r.
func SetupRoutes(r chi.Router, target TargetFunc, maxLen int, logger *slog.Logger) {
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, logger, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/dialects", handleDialects(logger))

	r.Group(func(r chi.Router) {
		r.Use(QueryObjectMiddleware(target, maxLen, logger))
		r.Get("/query-object", handleQueryObject(logger))
		r.Get("/query-object/{dialect}", handleQueryObject(logger))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, logger, notFoundError("route", r.URL.Path))
	})
}

func handleQueryObject(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, _ := r.Context().Value(queryObjectKey{}).(queryObjectValue)
		resp := QueryObjectResponse{QueryObject: v.q}
		if v.d != nil {
			resp.Dialect = v.d.Name
		}
		writeJSON(w, logger, http.StatusOK, resp)
	}
}

func handleDialects(logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		def := dialect.Default()
		infos := make([]DialectInfo, 0)
		for _, name := range dialect.List() {
			d, ok := dialect.Get(name)
			if !ok {
				continue
			}
			infos = append(infos, DialectInfo{
				Name:             d.Name,
				Description:      d.Description,
				ProjectionKey:    d.ProjectionKey,
				MixedProjections: d.MixedProjections,
				Keys:             d.Keys(),
				Default:          d == def,
			})
		}
		writeJSON(w, logger, http.StatusOK, infos)
	}
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to encode response", "error", err)
		status = http.StatusInternalServerError
		body = []byte(`{"error":{"name":"` + ErrNameUnexpected + `","title":"Generic server error","httpcode":500,"error":"Unexpected error","fixit":"","info":{}}}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(body, '\n')); err != nil {
		logger.Debug("failed to write response", "error", err)
	}
}
