package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"olhopix/internal/report/models"
	id "olhopix/pkg/domain"
	"olhopix/pkg/platform/sentinel"
	txcontext "olhopix/pkg/platform/tx"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Insert(ctx context.Context, report *models.Report, evidence []byte) error {
	// Report and evidence share the row, so the single INSERT keeps them
	// atomically visible together.
	query := `
		INSERT INTO reports (
			id, group_key, key_type, key_value, account_holder_name, tax_id,
			bank_name, police_report_number, branch_code, account_number,
			description, evidence, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), $12, $13)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		report.ID.String(), report.GroupKey, string(report.KeyType), report.KeyValue,
		report.AccountHolderName, report.TaxID, report.BankName,
		report.PoliceReportNumber, report.BranchCode, report.AccountNumber,
		report.Description, evidence, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

const reportColumns = `
	id, group_key, key_type, key_value, account_holder_name, tax_id,
	bank_name, police_report_number, COALESCE(branch_code, ''),
	COALESCE(account_number, ''), COALESCE(description, ''), created_at`

func (s *PostgresStore) Search(ctx context.Context, filter models.SearchFilter) ([]*models.Report, error) {
	query := "SELECT" + reportColumns + " FROM reports"

	var (
		conds []string
		args  []any
	)
	if filter.FreeText != "" {
		args = append(args, "%"+escapeLike(filter.FreeText)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(key_value ILIKE $%d OR account_holder_name ILIKE $%d OR bank_name ILIKE $%d"+
				" OR police_report_number ILIKE $%d OR tax_id ILIKE $%d)",
			n, n, n, n, n))
	}
	if filter.KeyType != "" {
		args = append(args, string(filter.KeyType))
		conds = append(conds, fmt.Sprintf("key_type = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search reports: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var reports []*models.Report
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

func (s *PostgresStore) FindEvidence(ctx context.Context, reportID id.ReportID) ([]byte, error) {
	var evidence []byte
	err := s.execer(ctx).
		QueryRowContext(ctx, `SELECT evidence FROM reports WHERE id = $1`, reportID.String()).
		Scan(&evidence)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find evidence: %w", err)
	}
	return evidence, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*models.Report, error) {
	var (
		report  models.Report
		rawID   string
		keyType string
	)
	err := row.Scan(&rawID, &report.GroupKey, &keyType, &report.KeyValue,
		&report.AccountHolderName, &report.TaxID, &report.BankName,
		&report.PoliceReportNumber, &report.BranchCode, &report.AccountNumber,
		&report.Description, &report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}

	reportID, err := id.ParseReportID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse stored report id: %w", err)
	}
	report.ID = reportID
	report.KeyType = models.KeyType(keyType)
	return &report, nil
}

// escapeLike neutralizes LIKE metacharacters so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
