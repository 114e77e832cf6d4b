package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rgdevment/scam-shield/internal/domain"
	"github.com/rgdevment/scam-shield/internal/platform/http/middleware"
	"github.com/rgdevment/scam-shield/internal/service"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

const (
	// maxSubmissionBytes caps a report submission: a 10 MiB screenshot plus form fields.
	maxSubmissionBytes = 11 << 20
	maxMultipartMemory = 4 << 20
)

type Handler struct {
	service service.Service
	logger  *logging.Logger
}

func NewHandler(s service.Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: s,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/v1/analysis", h.Analyze)
	r.Post("/v1/analysis", h.Analyze)

	r.Route("/v1/reports", func(r chi.Router) {
		r.Get("/", h.ListReports)
		r.Get("/recent", h.RecentReports)
		r.With(middleware.RequireIdentity).Post("/", h.CreateReport)
		r.With(middleware.RequireIdentity).Get("/mine", h.MyReports)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetReport)
			r.Get("/similar", h.SimilarReports)
			r.With(middleware.RequireIdentity).Post("/confirm", h.ConfirmReport)
			r.With(middleware.RequireRole(middleware.RoleModerator)).Patch("/moderation", h.ModerateReport)
		})
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze runs one analysis session. The session only settles on the
// result of the analysis it started.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, domain.NewValidationError("", "invalid JSON format"))
			return
		}
	} else {
		req.Input = r.URL.Query().Get("q")
		req.Kind = r.URL.Query().Get("kind")
	}

	areq, err := req.ToRequest()
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Each request owns a fresh session, so Complete always settles it on
	// this request's result. The session only shapes the response envelope
	// shared with the cmd/check watch loop, where superseding does happen.
	var session domain.Session
	session = session.Begin(areq.Input)
	result, err := h.service.Analyze(r.Context(), areq)
	session, _ = session.Complete(session.Seq, areq.Input, result, err)

	if session.Err != nil {
		h.writeError(w, session.Err)
		return
	}
	writeJSON(w, http.StatusOK, AnalyzeResponse{
		Status: session.Status,
		Seq:    session.Seq,
		Result: session.Result,
	})
}

func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes)
	in, release, err := decodeSubmission(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer release()
	in.ReporterID = id.UserID
	in.ReporterName = id.Name

	report, err := h.service.SubmitReport(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// decodeSubmission reads a multipart or JSON submission. The returned release
// func closes the uploaded file and removes any spooled parts.
func decodeSubmission(r *http.Request) (service.SubmitReportInput, func(), error) {
	var in service.SubmitReportInput
	release := func() {}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return in, release, domain.NewValidationError("screenshot", "submission must be at most %d bytes", tooLarge.Limit)
			}
			return in, release, domain.NewValidationError("", "invalid multipart form")
		}
		form := r.MultipartForm
		release = func() { _ = form.RemoveAll() }

		in.Title = r.FormValue("title")
		in.Content = r.FormValue("content")
		in.Category = r.FormValue("category")
		in.ContactInfo = r.FormValue("contactInfo")

		file, header, err := r.FormFile("screenshot")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			release()
			return in, func() {}, domain.NewValidationError("screenshot", "could not read upload")
		default:
			release = func() {
				_ = file.Close()
				_ = form.RemoveAll()
			}
			in.Screenshot = &service.Screenshot{
				Name:        header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Body:        file,
			}
		}
		return in, release, nil
	}

	var req CreateReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return in, release, domain.NewValidationError("", "invalid JSON format")
	}
	in.Title = req.Title
	in.Content = req.Content
	in.Category = req.Category
	in.ContactInfo = req.ContactInfo
	return in, release, nil
}

func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	page, err := h.service.ListReports(r.Context(), q)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func parseListQuery(r *http.Request) (domain.ListQuery, error) {
	v := r.URL.Query()
	q := domain.ListQuery{
		Category: domain.Category(strings.TrimSpace(v.Get("category"))),
		Search:   v.Get("search"),
		Sort:     domain.SortOrder(strings.ToLower(v.Get("sort"))),
	}
	if raw := v.Get("riskLevel"); raw != "" {
		level, ok := domain.ParseRiskLevel(raw)
		if !ok {
			return q, domain.NewValidationError("riskLevel", "%q is not a risk level", raw)
		}
		q.RiskLevel = level
	}
	for name, dst := range map[string]*int{"offset": &q.Offset, "limit": &q.Limit} {
		raw := v.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return q, domain.NewValidationError(name, "must be a non-negative integer")
		}
		*dst = n
	}
	return q, nil
}

func (h *Handler) RecentReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.service.RecentReports(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) MyReports(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.IdentityFromContext(r.Context())
	reports, err := h.service.ReporterReports(r.Context(), id.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}
	report, err := h.service.GetReport(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) SimilarReports(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}
	reports, err := h.service.SimilarReports(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reports)
}

func (h *Handler) ConfirmReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}
	caller, _ := middleware.IdentityFromContext(r.Context())
	report, err := h.service.ConfirmReport(r.Context(), id, caller.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) ModerateReport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.reportID(w, r)
	if !ok {
		return
	}
	var req ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, domain.NewValidationError("", "invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		h.writeError(w, err)
		return
	}

	report, err := h.service.ModerateReport(r.Context(), id, req.Status, req.RiskLevel)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) reportID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, domain.NewValidationError("id", "must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP status codes. Anything unknown is
// logged and hidden behind a 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ve.Error(), Field: ve.Field})
	case errors.Is(err, domain.ErrInvalidStatus):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Field: "status"})
	case errors.Is(err, domain.ErrReportNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrForbidden):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error()})
	default:
		h.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal Server Error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
