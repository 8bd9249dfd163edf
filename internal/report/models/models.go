// Package models defines the fraud-report domain types.
package models

import (
	"strings"
	"time"

	id "olhopix/pkg/domain"
	dErrors "olhopix/pkg/domain-errors"
)

// KeyType enumerates the pix key kinds a report can name.
type KeyType string

const (
	KeyTypeCPF   KeyType = "cpf"
	KeyTypeCNPJ  KeyType = "cnpj"
	KeyTypeEmail KeyType = "email"
	KeyTypePhone KeyType = "phone"
	// KeyTypeRandom is a per-registration token. It cannot link two
	// incidents, so it never appears in group exemplars.
	KeyTypeRandom KeyType = "random"
)

var keyTypes = map[KeyType]struct{}{
	KeyTypeCPF:    {},
	KeyTypeCNPJ:   {},
	KeyTypeEmail:  {},
	KeyTypePhone:  {},
	KeyTypeRandom: {},
}

// ParseKeyType normalizes and validates a raw key type value.
func ParseKeyType(raw string) (KeyType, error) {
	kt := KeyType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := keyTypes[kt]; !ok {
		return "", dErrors.New(dErrors.CodeValidation, "invalid key type: "+raw)
	}
	return kt, nil
}

// Stable reports whether the key value can serve as a cross-incident
// identity signal.
func (k KeyType) Stable() bool {
	return k != KeyTypeRandom
}

// Report is one submitted fraud report. Rows are append-only; group_key is
// fixed at write time and never recomputed. Evidence bytes are stored with
// the row but loaded separately so searches stay cheap.
type Report struct {
	ID                 id.ReportID
	GroupKey           string
	KeyType            KeyType
	KeyValue           string
	AccountHolderName  string
	TaxID              string
	BankName           string
	PoliceReportNumber string
	BranchCode         string
	AccountNumber      string
	Description        string
	CreatedAt          time.Time
}

// FraudGroup aggregates the reports sharing one group key. It is computed
// per query, never stored.
type FraudGroup struct {
	GroupKey          string
	AccountHolderName string
	TaxID             string
	BankName          string
	// ExemplarKeys joins the distinct non-random key values of the group
	// with newlines, newest first.
	ExemplarKeys string
	TotalReports int
}

// SubmitInput carries one incoming report plus its evidence document.
type SubmitInput struct {
	KeyType            string
	KeyValue           string
	AccountHolderName  string
	TaxID              string
	BankName           string
	PoliceReportNumber string
	BranchCode         string
	AccountNumber      string
	Description        string
	Evidence           []byte
}

// Normalize trims whitespace on every free-text field.
func (in *SubmitInput) Normalize() {
	in.KeyType = strings.TrimSpace(in.KeyType)
	in.KeyValue = strings.TrimSpace(in.KeyValue)
	in.AccountHolderName = strings.TrimSpace(in.AccountHolderName)
	in.TaxID = strings.TrimSpace(in.TaxID)
	in.BankName = strings.TrimSpace(in.BankName)
	in.PoliceReportNumber = strings.TrimSpace(in.PoliceReportNumber)
	in.BranchCode = strings.TrimSpace(in.BranchCode)
	in.AccountNumber = strings.TrimSpace(in.AccountNumber)
	in.Description = strings.TrimSpace(in.Description)
}

// Validate checks the required fields. BranchCode, AccountNumber and
// Description are optional.
func (in *SubmitInput) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"key_type", in.KeyType},
		{"key_value", in.KeyValue},
		{"account_holder_name", in.AccountHolderName},
		{"tax_id", in.TaxID},
		{"bank_name", in.BankName},
		{"police_report_number", in.PoliceReportNumber},
	}
	for _, f := range required {
		if f.value == "" {
			return dErrors.New(dErrors.CodeValidation, f.name+" is required")
		}
	}
	if _, err := ParseKeyType(in.KeyType); err != nil {
		return err
	}
	if len(in.Evidence) == 0 {
		return dErrors.New(dErrors.CodeValidation, "evidence document is required")
	}
	return nil
}

// SearchFilter restricts the candidate reports for detailed and aggregated
// search. Zero values mean no restriction; both filters compose with AND.
type SearchFilter struct {
	// FreeText matches case-insensitively as a substring against key_value,
	// account_holder_name, bank_name, police_report_number and tax_id.
	FreeText string
	KeyType  KeyType
}

// Matches implements the filter against one report. The in-memory store
// uses it directly; the postgres store mirrors it in SQL.
func (f SearchFilter) Matches(r *Report) bool {
	if f.KeyType != "" && r.KeyType != f.KeyType {
		return false
	}
	if f.FreeText == "" {
		return true
	}
	needle := strings.ToLower(f.FreeText)
	for _, field := range []string{
		r.KeyValue,
		r.AccountHolderName,
		r.BankName,
		r.PoliceReportNumber,
		r.TaxID,
	} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}
