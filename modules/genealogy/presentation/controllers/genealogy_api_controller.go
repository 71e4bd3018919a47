package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/arborfam/arbor/modules/genealogy/domain/aggregates/person"
	"github.com/arborfam/arbor/modules/genealogy/gedcom"
	"github.com/arborfam/arbor/modules/genealogy/presentation/mappers"
	"github.com/arborfam/arbor/modules/genealogy/presentation/viewmodels"
	"github.com/arborfam/arbor/modules/genealogy/services"
	"github.com/arborfam/arbor/pkg/application"
	"github.com/arborfam/arbor/pkg/configuration"
	"github.com/arborfam/arbor/pkg/middleware"
	"github.com/arborfam/arbor/pkg/serrors"
)

type GenealogyAPIController struct {
	app        application.Application
	persons    *services.PersonService
	duplicates *services.DuplicateService
	importer   *services.ImportService
	merger     *services.MergeService
	basePath   string
}

func NewGenealogyAPIController(app application.Application) application.Controller {
	return &GenealogyAPIController{
		app:        app,
		persons:    app.Service(services.PersonService{}).(*services.PersonService),
		duplicates: app.Service(services.DuplicateService{}).(*services.DuplicateService),
		importer:   app.Service(services.ImportService{}).(*services.ImportService),
		merger:     app.Service(services.MergeService{}).(*services.MergeService),
		basePath:   "/genealogy/api",
	}
}

func (c *GenealogyAPIController) Key() string {
	return c.basePath
}

func (c *GenealogyAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.Use(middleware.ProvideTenant())

	router.HandleFunc("/persons", c.ListPersons).Methods(http.MethodGet)
	router.HandleFunc("/persons/{id}/duplicates", c.PersonDuplicates).Methods(http.MethodGet)
	router.HandleFunc("/persons/{id}/link-candidates", c.LinkCandidates).Methods(http.MethodGet)
	router.HandleFunc("/duplicates", c.AllDuplicates).Methods(http.MethodGet)
	router.HandleFunc("/profile", c.GetProfile).Methods(http.MethodGet)
	router.HandleFunc("/import/preview", c.ImportPreview).Methods(http.MethodPost)

	// Import and merge manage their own transactions: the per-owner lock must
	// be taken before the transaction begins, so WithTransaction stays off
	// these routes.
	router.HandleFunc("/import", c.Import).Methods(http.MethodPost)
	router.HandleFunc("/merge/preview", c.MergePreview).Methods(http.MethodPost)
	router.HandleFunc("/merge", c.Merge).Methods(http.MethodPost)
	router.HandleFunc("/profile", c.SetProfile).Methods(http.MethodPut)
}

func (c *GenealogyAPIController) ListPersons(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := queryInt(r, "limit", 20, 100)
	offset := queryInt(r, "offset", 0, 0)

	items, total, err := c.persons.GetPaginated(r.Context(), &person.FindParams{Q: q, Limit: limit, Offset: offset})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]viewmodels.Person, 0, len(items))
	for _, p := range items {
		out = append(out, mappers.PersonToViewModel(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *GenealogyAPIController) AllDuplicates(w http.ResponseWriter, r *http.Request) {
	threshold := queryInt(r, "threshold", configuration.Use().Gedcom.DuplicateThreshold, 100)
	limit := queryInt(r, "limit", 0, 0)

	candidates, err := c.duplicates.FindAllDuplicates(r.Context(), threshold, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": mappers.CandidatesToViewModels(candidates),
	})
}

func (c *GenealogyAPIController) PersonDuplicates(w http.ResponseWriter, r *http.Request) {
	personID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	threshold := queryInt(r, "threshold", configuration.Use().Gedcom.DuplicateThreshold, 100)
	limit := queryInt(r, "limit", 0, 0)

	candidates, err := c.duplicates.FindDuplicatesForPerson(r.Context(), personID, threshold, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"candidates": mappers.CandidatesToViewModels(candidates),
	})
}

func (c *GenealogyAPIController) LinkCandidates(w http.ResponseWriter, r *http.Request) {
	personID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	candidates, err := c.duplicates.LinkCandidates(r.Context(), personID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	out := make([]viewmodels.Person, 0, len(candidates))
	for _, p := range candidates {
		out = append(out, mappers.PersonToViewModel(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
	})
}

// ImportPreview parses the uploaded file without writing anything and reports
// parse errors plus duplicate candidates against the owner's stored persons.
// With ?format=csv the parse log is returned as a CSV attachment instead.
func (c *GenealogyAPIController) ImportPreview(w http.ResponseWriter, r *http.Request) {
	parsed, ok := c.parseUpload(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="import-errors.csv"`)
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, parsed.Log.CSV())
		return
	}

	threshold := queryInt(r, "threshold", configuration.Use().Gedcom.DuplicateThreshold, 100)
	candidates, err := c.duplicates.FindImportDuplicates(r.Context(), parsed.Individuals, threshold)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	summary := services.ImportSummary{Log: parsed.Log, FamiliesProcessed: len(parsed.Families)}
	vm := mappers.ImportSummaryToViewModel(&summary)
	writeJSON(w, http.StatusOK, map[string]any{
		"individuals": len(parsed.Individuals),
		"families":    len(parsed.Families),
		"duplicates":  mappers.CandidatesToViewModels(candidates),
		"errors":      vm.Errors,
		"warnings":    vm.Warnings,
	})
}

type resolutionDTO struct {
	GedcomID         string `json:"gedcom_id"`
	Resolution       string `json:"resolution"`
	ExistingPersonID string `json:"existing_person_id"`
}

func (c *GenealogyAPIController) Import(w http.ResponseWriter, r *http.Request) {
	parsed, ok := c.parseUpload(w, r)
	if !ok {
		return
	}

	decisions, ok := parseDecisions(w, r.FormValue("decisions"))
	if !ok {
		return
	}

	summary, err := c.importer.Import(r.Context(), parsed, decisions)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.ImportSummaryToViewModel(summary))
}

type mergeDTO struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

func (c *GenealogyAPIController) MergePreview(w http.ResponseWriter, r *http.Request) {
	sourceID, targetID, ok := parseMergeDTO(w, r)
	if !ok {
		return
	}

	preview, err := c.merger.Preview(r.Context(), sourceID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.PreviewToViewModel(preview))
}

func (c *GenealogyAPIController) Merge(w http.ResponseWriter, r *http.Request) {
	sourceID, targetID, ok := parseMergeDTO(w, r)
	if !ok {
		return
	}

	result, err := c.merger.Execute(r.Context(), sourceID, targetID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, mappers.MergeResultToViewModel(result))
}

func (c *GenealogyAPIController) GetProfile(w http.ResponseWriter, r *http.Request) {
	profileID, err := c.persons.ProfilePersonID(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if profileID == uuid.Nil {
		writeJSON(w, http.StatusOK, map[string]any{"person": nil})
		return
	}
	p, err := c.persons.GetByID(r.Context(), profileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person": mappers.PersonToViewModel(p)})
}

func (c *GenealogyAPIController) SetProfile(w http.ResponseWriter, r *http.Request) {
	var dto struct {
		PersonID string `json:"person_id"`
	}
	if err := decodeJSON(r, &dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_INVALID_JSON", "invalid json")
		return
	}
	personID, err := uuid.Parse(dto.PersonID)
	if err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_ID", "person_id must be a UUID")
		return
	}

	if err := c.persons.SetProfilePerson(r.Context(), personID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"person_id": personID.String()})
}

// parseUpload reads the "file" part of a multipart form, bounded by the
// configured upload ceiling, and runs the structural parser. A fatal parse
// error (unsupported GEDCOM version) is reported as 422 with the parser's
// error code.
func (c *GenealogyAPIController) parseUpload(w http.ResponseWriter, r *http.Request) (*gedcom.Result, bool) {
	maxBytes := int64(configuration.Use().Gedcom.MaxUploadMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_INVALID_UPLOAD", "expected multipart form with a file field")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_INVALID_UPLOAD", "expected multipart form with a file field")
		return nil, false
	}
	defer func() { _ = file.Close() }()

	parsed, err := gedcom.Parse(file)
	if err != nil {
		var serr *serrors.Error
		if errors.As(err, &serr) {
			writeAPIError(w, http.StatusUnprocessableEntity, serr.Code, serr.Message)
			return nil, false
		}
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_PARSE_FAILED", err.Error())
		return nil, false
	}
	return parsed, true
}

func parseDecisions(w http.ResponseWriter, raw string) ([]services.ResolutionDecision, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true
	}

	var dtos []resolutionDTO
	if err := json.Unmarshal([]byte(raw), &dtos); err != nil {
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_INVALID_JSON", "decisions must be a JSON array")
		return nil, false
	}

	decisions := make([]services.ResolutionDecision, 0, len(dtos))
	for _, dto := range dtos {
		decision := services.ResolutionDecision{
			GedcomID:   dto.GedcomID,
			Resolution: services.Resolution(dto.Resolution),
		}
		switch decision.Resolution {
		case services.ResolutionSkip, services.ResolutionMerge:
			id, err := uuid.Parse(dto.ExistingPersonID)
			if err != nil {
				writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_ID",
					"existing_person_id must be a UUID for skip and merge resolutions")
				return nil, false
			}
			decision.ExistingPersonID = id
		case services.ResolutionImportAsNew:
		default:
			writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_RESOLUTION",
				"resolution must be one of skip, merge, import_as_new")
			return nil, false
		}
		decisions = append(decisions, decision)
	}
	return decisions, true
}

func parseMergeDTO(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	var dto mergeDTO
	if err := decodeJSON(r, &dto); err != nil {
		writeAPIError(w, http.StatusBadRequest, "GENEALOGY_INVALID_JSON", "invalid json")
		return uuid.Nil, uuid.Nil, false
	}
	sourceID, err := uuid.Parse(dto.SourceID)
	if err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_ID", "source_id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	targetID, err := uuid.Parse(dto.TargetID)
	if err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_ID", "target_id must be a UUID")
		return uuid.Nil, uuid.Nil, false
	}
	return sourceID, targetID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeAPIError(w, http.StatusUnprocessableEntity, "GENEALOGY_INVALID_ID", name+" must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// writeServiceError maps domain errors onto the API surface: missing or
// foreign-owned records are 404, coded validation failures 422, storage
// constraint conflicts 409, deadline and transport failures 504/502.
// Everything uncoded is reported under UNKNOWN_ERROR.
func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, person.ErrNotFound) {
		writeAPIError(w, http.StatusNotFound, "GENEALOGY_NOT_FOUND", "person not found")
		return
	}
	serr := serrors.Classify(err)
	switch {
	case errors.Is(serr, serrors.ErrConstraint):
		writeAPIError(w, http.StatusConflict, serr.Code, serr.Message)
	case errors.Is(serr, serrors.ErrValidation), errors.Is(serr, serrors.ErrValidationWarning):
		writeAPIError(w, http.StatusUnprocessableEntity, serr.Code, serr.Message)
	case errors.Is(serr, serrors.ErrTimeout):
		writeAPIError(w, http.StatusGatewayTimeout, serr.Code, serr.Message)
	case errors.Is(serr, serrors.ErrNetwork):
		writeAPIError(w, http.StatusBadGateway, serr.Code, serr.Message)
	default:
		writeAPIError(w, http.StatusInternalServerError, serr.Code, serr.Message)
	}
}
