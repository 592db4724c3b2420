package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/exportsafe/lcaudit/internal/catalog"
	"github.com/exportsafe/lcaudit/internal/extraction"
	"github.com/exportsafe/lcaudit/internal/repository"
	"github.com/exportsafe/lcaudit/internal/rules"
	"github.com/exportsafe/lcaudit/internal/scoring"
	"github.com/exportsafe/lcaudit/internal/screening"
)

// CatalogStore persists catalog edits. *repository.CatalogRepo implements it.
type CatalogStore interface {
	ReplaceCorrections(cs []extraction.Correction) (int, error)
	UpsertJurisdiction(j rules.Jurisdiction) error
	DeleteJurisdiction(code string) error
}

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	svc      *screening.Service
	store    CatalogStore
	logger   *slog.Logger
	maxBody  int64
	maxBatch int

	// catalogMu serialises catalog edits: read, persist, reload.
	catalogMu sync.Mutex
}

var validate = validator.New()

type auditRequest struct {
	LC            string `json:"lc"`
	Invoice       string `json:"invoice"`
	Profile       string `json:"profile" validate:"omitempty,max=32"`
	Jurisdiction  string `json:"jurisdiction" validate:"omitempty,alphanum,max=8"`
	IncludeFields bool   `json:"include_fields"`
}

func (a auditRequest) toRequest(id string) screening.Request {
	return screening.Request{
		ID:            id,
		LC:            a.LC,
		Invoice:       a.Invoice,
		Profile:       a.Profile,
		Jurisdiction:  a.Jurisdiction,
		IncludeFields: a.IncludeFields,
	}
}

type batchItem struct {
	ID string `json:"id" validate:"omitempty,max=128"`
	auditRequest
}

type batchRequest struct {
	// Items are validated individually so errors name the failing index.
	Items []batchItem `json:"items" validate:"required,min=1"`
}

type validateRequest struct {
	LC string `json:"lc"`
}

type correctionsRequest struct {
	Corrections []extraction.Correction `json:"corrections" validate:"required,dive"`
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service and store errors onto status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, screening.ErrDocumentTooLarge), errors.As(err, &tooLarge):
		h.writeError(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, scoring.ErrUnknownProfile), errors.Is(err, rules.ErrUnknownJurisdiction):
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error("request failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decode reads one JSON body into v and validates it.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if !h.decodeJSON(w, r, v) {
		return false
	}
	if err := validate.Struct(v); err != nil {
		h.writeError(w, http.StatusBadRequest, "validation failed: "+err.Error())
		return false
	}
	return true
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			h.writeError(w, http.StatusBadRequest, "request body is required")
		default:
			h.writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		}
		return false
	}
	return true
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"rules":         h.svc.Rules(),
		"jurisdictions": h.svc.Jurisdictions(),
	})
}

// --- Audit ---

func (h *Handlers) Audit(w http.ResponseWriter, r *http.Request) {
	var req auditRequest
	if !h.decode(w, r, &req) {
		return
	}

	res, err := h.svc.Audit(r.Context(), req.toRequest(""))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("X-Audit-ID", res.ID)
	h.writeJSON(w, http.StatusOK, res.Report)
}

// --- AuditBatch ---

func (h *Handlers) AuditBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Items) > h.maxBatch {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("batch has %d items, limit %d", len(req.Items), h.maxBatch))
		return
	}

	reqs := make([]screening.Request, len(req.Items))
	for i, item := range req.Items {
		if err := validate.Struct(item); err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("item %d: validation failed: %v", i, err))
			return
		}
		reqs[i] = item.toRequest(item.ID)
	}

	results, err := h.svc.AuditBatch(r.Context(), reqs)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	failed := 0
	for _, res := range results {
		if res.Error != "" {
			failed++
		}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
		"failed":  failed,
	})
}

// --- AuditDemo ---

func (h *Handlers) AuditDemo(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Demo(r.Context())
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("X-Audit-ID", res.ID)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"lc":      screening.DemoLC,
		"invoice": screening.DemoInvoice,
		"report":  res.Report,
	})
}

// --- ValidateLC ---

func (h *Handlers) ValidateLC(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.svc.ValidateLC(req.LC)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, res)
}

// --- ListProfiles ---

func (h *Handlers) ListProfiles(w http.ResponseWriter, r *http.Request) {
	var profiles []scoring.Profile
	for _, name := range scoring.Names() {
		p, err := scoring.Lookup(name)
		if err != nil {
			h.writeServiceError(w, err)
			return
		}
		profiles = append(profiles, p)
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// --- GetCatalog ---

// GetCatalog returns the catalog in use, as YAML when ?format=yaml.
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	c := h.svc.Catalog()
	if strings.EqualFold(r.URL.Query().Get("format"), "yaml") {
		w.Header().Set("Content-Type", "application/yaml")
		w.WriteHeader(http.StatusOK)
		if err := c.WriteYAML(w); err != nil {
			h.logger.Error("encode catalog", "error", err)
		}
		return
	}
	h.writeJSON(w, http.StatusOK, c)
}

// --- ReplaceCorrections ---

func (h *Handlers) ReplaceCorrections(w http.ResponseWriter, r *http.Request) {
	var req correctionsRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.catalogMu.Lock()
	defer h.catalogMu.Unlock()

	current := h.svc.Catalog()
	next := current.Snapshot()
	next.Corrections = req.Corrections

	if !h.apply(w, current, next, func() error {
		_, err := h.store.ReplaceCorrections(req.Corrections)
		return err
	}) {
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int{"corrections": len(req.Corrections)})
}

// --- UpsertJurisdiction ---

func (h *Handlers) UpsertJurisdiction(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))

	var j rules.Jurisdiction
	if !h.decodeJSON(w, r, &j) {
		return
	}
	if j.Code != "" && !strings.EqualFold(strings.TrimSpace(j.Code), code) {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("body code %q does not match path code %q", j.Code, code))
		return
	}
	j.Code = code
	if err := catalog.ValidateJurisdiction(j); err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.catalogMu.Lock()
	defer h.catalogMu.Unlock()

	current := h.svc.Catalog()
	_, existed := current.Jurisdiction(code)
	if !h.apply(w, current, current.WithJurisdiction(j), func() error {
		return h.store.UpsertJurisdiction(j)
	}) {
		return
	}

	status := http.StatusOK
	if !existed {
		status = http.StatusCreated
	}
	h.writeJSON(w, status, j)
}

// --- DeleteJurisdiction ---

func (h *Handlers) DeleteJurisdiction(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "code")))

	h.catalogMu.Lock()
	defer h.catalogMu.Unlock()

	current := h.svc.Catalog()
	next, ok := current.WithoutJurisdiction(code)
	if !ok {
		h.writeError(w, http.StatusNotFound, fmt.Sprintf("jurisdiction %s not found", code))
		return
	}
	if !h.apply(w, current, next, func() error {
		return h.store.DeleteJurisdiction(code)
	}) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// apply makes next the live catalog, then persists it. If persisting fails
// the previous catalog is restored.
func (h *Handlers) apply(w http.ResponseWriter, prev, next catalog.Catalog, persist func() error) bool {
	if err := h.svc.Reload(next); err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return false
	}
	if err := persist(); err != nil {
		if rerr := h.svc.Reload(prev); rerr != nil {
			h.logger.Error("restore catalog", "error", rerr)
		}
		h.writeServiceError(w, fmt.Errorf("persist catalog: %w", err))
		return false
	}
	return true
}
