// Package groupkey derives the key that decides which reports describe the
// same fraudster.
package groupkey

import (
	"strings"

	strutil "olhopix/pkg/platform/strings"
)

// Derive maps a report's identity fields to its fraud-group key. Two
// reports land in the same group exactly when their normalized account
// holder name and trimmed tax id agree; the pix key plays no part.
//
// The function is pure and total. It does not validate: empty inputs still
// produce a key, and the caller decides whether they were acceptable.
func Derive(accountHolderName, taxID string) string {
	return strutil.NormalizeLower(accountHolderName) + "_" + strings.TrimSpace(taxID)
}
