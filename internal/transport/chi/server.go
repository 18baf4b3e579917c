// Package chi exposes the dataset pipeline over HTTP: registration,
// item ingestion and reads, mapping introspection, health and metrics.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/statwatch/datasets/internal/domain"
	domds "github.com/statwatch/datasets/internal/domain/dataset"
	"github.com/statwatch/datasets/internal/domain/mapping"
	datasetuc "github.com/statwatch/datasets/internal/usecase/dataset"
	healthuc "github.com/statwatch/datasets/internal/usecase/health"
	registryuc "github.com/statwatch/datasets/internal/usecase/registry"
)

// maxItemBytes caps a single ingested payload.
const maxItemBytes = 8 << 20

// Server handles the dataset HTTP API.
type Server struct {
	datasets *datasetuc.Service
	registry *registryuc.Registry
	health   *healthuc.Service
	logger   *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	datasets *datasetuc.Service,
	registry *registryuc.Registry,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	return &Server{
		datasets: datasets,
		registry: registry,
		health:   health,
		logger:   logger,
	}
}

// Routes mounts all API routes on the router.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.healthCheck)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1/datasets", func(r chi.Router) {
		r.Post("/", s.registerDataset)
		r.Get("/{dataset}", s.getDataset)
		r.Get("/{dataset}/mapping", s.getMapping)
		r.Get("/{dataset}/schema/paths", s.getSchemaPaths)
		r.Put("/{dataset}/items/{item}", s.upsertItem)
		r.Get("/{dataset}/items/{item}", s.getItem)
		r.Head("/{dataset}/items/{item}", s.headItem)
		r.Delete("/{dataset}/items/{item}", s.deleteItem)
	})
}

type registerRequest struct {
	DatasetID            string          `json:"datasetId"`
	Name                 string          `json:"name"`
	CreatedBy            string          `json:"createdBy"`
	JSONSchema           json.RawMessage `json:"jsonSchema"`
	SearchResultTemplate *templateDTO    `json:"searchResultTemplate,omitempty"`
	DetailTemplate       *templateDTO    `json:"detailTemplate,omitempty"`
}

type templateDTO struct {
	Body string `json:"body"`
}

func (s *Server) registerDataset(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeMalformedInput, "invalid request body: "+err.Error())
		return
	}

	reg := &domds.Registration{
		DatasetID:  req.DatasetID,
		Name:       req.Name,
		CreatedBy:  req.CreatedBy,
		JSONSchema: req.JSONSchema,
	}
	if req.SearchResultTemplate != nil {
		reg.SearchResultTemplate = &domds.Template{Body: req.SearchResultTemplate.Body}
	}
	if req.DetailTemplate != nil {
		reg.DetailTemplate = &domds.Template{Body: req.DetailTemplate.Body}
	}

	ds, err := s.datasets.Register(r.Context(), reg)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	s.registry.Invalidate(ds.ID())

	w.Header().Set("Location", "/api/v1/datasets/"+ds.ID())
	writeJSON(w, http.StatusCreated, map[string]string{"datasetId": ds.ID()})
}

func (s *Server) getDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	reg, err := ds.Registration(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) upsertItem(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxItemBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, domain.CodeMalformedInput, "read body: "+err.Error())
		return
	}
	if len(payload) > maxItemBytes {
		writeError(w, http.StatusRequestEntityTooLarge, domain.CodeMalformedInput, "payload too large")
		return
	}

	opts := datasetuc.AddOptions{
		SkipValidation: !queryFlag(r, "validate", true),
		SkipOCR:        queryFlag(r, "skipOCR", false),
	}

	createdBy := r.Header.Get("X-Created-By")
	if createdBy == "" {
		createdBy = "api"
	}

	finalID, err := ds.AddData(r.Context(), payload, chi.URLParam(r, "item"), createdBy, opts)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": finalID})
}

func (s *Server) getItem(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	raw, found, err := ds.GetData(r.Context(), chi.URLParam(r, "item"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !found {
		s.handleDomainError(w, domain.NewError(ds.ID(), domain.ErrItemNotFound, ""))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}

func (s *Server) headItem(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	found, err := ds.ItemExists(r.Context(), chi.URLParam(r, "item"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	deleted, err := ds.DeleteData(r.Context(), chi.URLParam(r, "item"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if !deleted {
		s.handleDomainError(w, domain.NewError(ds.ID(), domain.ErrItemNotFound, ""))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getMapping(w http.ResponseWriter, r *http.Request) {
	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	f := mapping.Filter{Name: r.URL.Query().Get("name")}
	if kindStr := r.URL.Query().Get("kind"); kindStr != "" {
		kind, err := mapping.ParseKind(kindStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, domain.CodeMalformedInput, err.Error())
			return
		}
		f.Kind = kind
	}

	paths, err := ds.MappingPaths(r.Context(), f)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"paths": emptyIfNil(paths)})
}

func (s *Server) getSchemaPaths(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, domain.CodeMalformedInput, "name query parameter is required")
		return
	}

	ds, err := s.registry.Get(r.Context(), chi.URLParam(r, "dataset"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	paths, err := ds.SchemaPropertyPaths(r.Context(), name)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"paths": emptyIfNil(paths)})
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status":      report.Status,
		"checks":      report.Checks,
		"queue_depth": report.QueueDepth,
	})
}

type errorResponse struct {
	Code        int    `json:"code"`
	Description string `json:"description"`
	Detail      string `json:"detail,omitempty"`
	Dataset     string `json:"dataset,omitempty"`
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		s.logger.Warn("domain error",
			zap.String("dataset", de.DatasetID), zap.Int("code", de.Code), zap.Error(err))
		writeJSON(w, httpStatus(de.Code), errorResponse{
			Code:        de.Code,
			Description: de.Description,
			Detail:      de.Detail,
			Dataset:     de.DatasetID,
		})
		return
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, http.StatusInternalServerError, "internal error")
}

// httpStatus maps application error codes onto HTTP statuses. The 46x
// codes are application-level and travel in the body; on the wire they
// collapse to 400 except the write failure.
func httpStatus(code int) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeAlreadyRegistered:
		return http.StatusConflict
	case domain.CodeWriteFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status, code int, message string) {
	writeJSON(w, status, errorResponse{Code: code, Description: message})
}

func queryFlag(r *http.Request, name string, def bool) bool {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
