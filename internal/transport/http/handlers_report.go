package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"olhopix/internal/report/models"
	id "olhopix/pkg/domain"
	dErrors "olhopix/pkg/domain-errors"
	"olhopix/pkg/platform/httputil"
	"olhopix/pkg/requestcontext"
)

type ReportService interface {
	Submit(ctx context.Context, input models.SubmitInput) (*models.Report, error)
	Search(ctx context.Context, filter models.SearchFilter) ([]*models.Report, error)
	SearchGroups(ctx context.Context, filter models.SearchFilter) ([]*models.FraudGroup, error)
	Attachment(ctx context.Context, reportID id.ReportID) ([]byte, error)
}

type ReportHandler struct {
	reports  ReportService
	logger   *slog.Logger
	maxBytes int64
}

func NewReportHandler(reports ReportService, logger *slog.Logger, maxAttachmentBytes int64) *ReportHandler {
	return &ReportHandler{
		reports:  reports,
		logger:   logger,
		maxBytes: maxAttachmentBytes,
	}
}

type reportResponse struct {
	ID                 string    `json:"id"`
	GroupKey           string    `json:"group_key"`
	KeyType            string    `json:"key_type"`
	KeyValue           string    `json:"key_value"`
	AccountHolderName  string    `json:"account_holder_name"`
	TaxID              string    `json:"tax_id"`
	BankName           string    `json:"bank_name"`
	PoliceReportNumber string    `json:"police_report_number"`
	BranchCode         string    `json:"branch_code,omitempty"`
	AccountNumber      string    `json:"account_number,omitempty"`
	Description        string    `json:"description,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

func toReportResponse(r *models.Report) reportResponse {
	return reportResponse{
		ID:                 r.ID.String(),
		GroupKey:           r.GroupKey,
		KeyType:            string(r.KeyType),
		KeyValue:           r.KeyValue,
		AccountHolderName:  r.AccountHolderName,
		TaxID:              r.TaxID,
		BankName:           r.BankName,
		PoliceReportNumber: r.PoliceReportNumber,
		BranchCode:         r.BranchCode,
		AccountNumber:      r.AccountNumber,
		Description:        r.Description,
		CreatedAt:          r.CreatedAt,
	}
}

type groupResponse struct {
	GroupKey          string `json:"group_key"`
	AccountHolderName string `json:"account_holder_name"`
	TaxID             string `json:"tax_id"`
	BankName          string `json:"bank_name"`
	ExemplarKeys      string `json:"exemplar_keys"`
	TotalReports      int    `json:"total_reports"`
}

// HandleSubmit handles POST /api/reports. The body is a multipart form with
// the report fields plus one "evidence" file part.
func (h *ReportHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		h.logger.WarnContext(ctx, "invalid multipart form",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid multipart form"))
		return
	}

	evidence, err := readEvidence(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	input := models.SubmitInput{
		KeyType:            r.FormValue("key_type"),
		KeyValue:           r.FormValue("key_value"),
		AccountHolderName:  r.FormValue("account_holder_name"),
		TaxID:              r.FormValue("tax_id"),
		BankName:           r.FormValue("bank_name"),
		PoliceReportNumber: r.FormValue("police_report_number"),
		BranchCode:         r.FormValue("branch_code"),
		AccountNumber:      r.FormValue("account_number"),
		Description:        r.FormValue("description"),
		Evidence:           evidence,
	}

	report, err := h.reports.Submit(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "report submission failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toReportResponse(report))
}

func readEvidence(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("evidence")
	if err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, "evidence document is required")
	}
	defer func() {
		_ = file.Close()
	}()

	evidence, err := io.ReadAll(file)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read evidence document")
	}
	return evidence, nil
}

// HandleSearch handles GET /api/reports.
func (h *ReportHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reports, err := h.reports.Search(ctx, filterFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, report := range reports {
		out = append(out, toReportResponse(report))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGroups handles GET /api/reports/groups.
func (h *ReportHandler) HandleGroups(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	groups, err := h.reports.SearchGroups(ctx, filterFromQuery(r))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupResponse{
			GroupKey:          g.GroupKey,
			AccountHolderName: g.AccountHolderName,
			TaxID:             g.TaxID,
			BankName:          g.BankName,
			ExemplarKeys:      g.ExemplarKeys,
			TotalReports:      g.TotalReports,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) models.SearchFilter {
	return models.SearchFilter{
		FreeText: r.URL.Query().Get("q"),
		KeyType:  models.KeyType(r.URL.Query().Get("key_type")),
	}
}

// HandleAttachment handles GET /api/reports/{reportID}/attachment.
func (h *ReportHandler) HandleAttachment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	reportID, err := id.ParseReportID(chi.URLParam(r, "reportID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	evidence, err := h.reports.Attachment(ctx, reportID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="evidence"`)
	_, _ = w.Write(evidence)
}
