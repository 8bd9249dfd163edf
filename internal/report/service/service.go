// Package service implements report ingestion, aggregated fraud-group
// search and evidence retrieval.
package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store,AuditPublisher

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"olhopix/internal/report/groupkey"
	"olhopix/internal/report/metrics"
	"olhopix/internal/report/models"
	id "olhopix/pkg/domain"
	dErrors "olhopix/pkg/domain-errors"
	"olhopix/pkg/platform/audit"
	"olhopix/pkg/platform/sentinel"
	strutil "olhopix/pkg/platform/strings"
	"olhopix/pkg/requestcontext"
)

type Store interface {
	Insert(ctx context.Context, report *models.Report, evidence []byte) error
	Search(ctx context.Context, filter models.SearchFilter) ([]*models.Report, error)
	FindEvidence(ctx context.Context, reportID id.ReportID) ([]byte, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service holds no state between calls; every search recomputes its
// aggregation from the store so results always reflect the latest
// committed reports.
type Service struct {
	store   Store
	audit   AuditPublisher
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("report store is required")
	}

	svc := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("olhopix/report"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Submit validates one incoming report, derives its group key and persists
// it together with the evidence document.
func (s *Service) Submit(ctx context.Context, input models.SubmitInput) (*models.Report, error) {
	input.Normalize()
	if err := input.Validate(); err != nil {
		return nil, err
	}
	keyType, err := models.ParseKeyType(input.KeyType)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:                 id.NewReportID(),
		GroupKey:           groupkey.Derive(input.AccountHolderName, input.TaxID),
		KeyType:            keyType,
		KeyValue:           input.KeyValue,
		AccountHolderName:  input.AccountHolderName,
		TaxID:              input.TaxID,
		BankName:           input.BankName,
		PoliceReportNumber: input.PoliceReportNumber,
		BranchCode:         input.BranchCode,
		AccountNumber:      input.AccountNumber,
		Description:        input.Description,
		CreatedAt:          requestcontext.Now(ctx).UTC(),
	}

	if err := s.store.Insert(ctx, report, input.Evidence); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store report")
	}

	s.emit(ctx, audit.Event{
		Action:  string(audit.EventReportSubmitted),
		UserID:  requestcontext.UserID(ctx),
		Subject: report.ID.String(),
	})
	s.metrics.IncrementSubmitted(string(keyType))

	s.logger.InfoContext(ctx, "report submitted",
		"report_id", report.ID,
		"key_type", keyType,
		"group_key", report.GroupKey,
	)
	return report, nil
}

// Search returns the individual reports matching the filter, newest first.
func (s *Service) Search(ctx context.Context, filter models.SearchFilter) ([]*models.Report, error) {
	if err := validateFilter(&filter); err != nil {
		return nil, err
	}

	reports, err := s.store.Search(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search reports")
	}
	return reports, nil
}

// SearchGroups partitions the matching reports by group key and returns one
// aggregated row per fraud group, ordered by report count descending with
// group key ascending as the tie-break.
func (s *Service) SearchGroups(ctx context.Context, filter models.SearchFilter) ([]*models.FraudGroup, error) {
	if err := validateFilter(&filter); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "report.SearchGroups")
	defer span.End()
	start := time.Now()

	reports, err := s.store.Search(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search reports")
	}

	groups := aggregate(reports)

	span.SetAttributes(
		attribute.Int("report.rows", len(reports)),
		attribute.Int("report.groups", len(groups)),
	)
	s.metrics.ObserveSearch(time.Since(start))
	return groups, nil
}

// aggregate builds one FraudGroup per group key. Reports arrive newest
// first, so the first member seen supplies the identity fields and the
// exemplar lists distinct non-random key values in newest-first order.
func aggregate(reports []*models.Report) []*models.FraudGroup {
	byKey := make(map[string]*models.FraudGroup)
	members := make(map[string][]string)
	var order []string

	for _, report := range reports {
		group, ok := byKey[report.GroupKey]
		if !ok {
			group = &models.FraudGroup{
				GroupKey:          report.GroupKey,
				AccountHolderName: report.AccountHolderName,
				TaxID:             report.TaxID,
				BankName:          report.BankName,
			}
			byKey[report.GroupKey] = group
			order = append(order, report.GroupKey)
		}
		group.TotalReports++
		if report.KeyType.Stable() {
			members[report.GroupKey] = append(members[report.GroupKey], report.KeyValue)
		}
	}

	groups := make([]*models.FraudGroup, 0, len(order))
	for _, key := range order {
		group := byKey[key]
		group.ExemplarKeys = strings.Join(strutil.DedupeAndTrim(members[key]), "\n")
		groups = append(groups, group)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].TotalReports != groups[j].TotalReports {
			return groups[i].TotalReports > groups[j].TotalReports
		}
		return groups[i].GroupKey < groups[j].GroupKey
	})
	return groups
}

// Attachment returns the evidence bytes stored for one report.
func (s *Service) Attachment(ctx context.Context, reportID id.ReportID) ([]byte, error) {
	blob, err := s.store.FindEvidence(ctx, reportID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "report not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evidence")
	}

	s.emit(ctx, audit.Event{
		Action:  string(audit.EventAttachmentDownloaded),
		UserID:  requestcontext.UserID(ctx),
		Subject: reportID.String(),
	})
	s.metrics.IncrementAttachmentDownloads()
	return blob, nil
}

func validateFilter(filter *models.SearchFilter) error {
	filter.FreeText = strings.TrimSpace(filter.FreeText)
	if filter.KeyType == "" {
		return nil
	}
	keyType, err := models.ParseKeyType(string(filter.KeyType))
	if err != nil {
		return err
	}
	filter.KeyType = keyType
	return nil
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", event.Action, "error", err)
	}
}
