package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fkoehler/kickflow/internal/domain"
)

// RecordError carries the full set of validation messages for a single
// record. Callers surface all problems at once rather than the first only.
type RecordError struct {
	Errors []string
}

// Error implements the error interface.
//
// Returns:
//   - string: all validation messages joined with "; "
func (e *RecordError) Error() string {
	return strings.Join(e.Errors, "; ")
}

// Result is the outcome of validating a batch of parsed records.
// NormalizedData keeps positional correspondence with the input slice, so
// row numbers in Errors always line up with the originals.
type Result struct {
	NormalizedData []map[string]interface{}
	Errors         []string
	Warnings       []string
}

// IsValid reports whether the batch passed without a single record error.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates and normalizes records for one marketplace source.
type Validator interface {
	// ValidateBatch validates all records. It never returns an error:
	// per-record failures are collected into the Result with 1-based
	// row numbers, and the failing record is kept in NormalizedData
	// flagged with "_validation_error".
	ValidateBatch(records []map[string]interface{}) *Result

	// ValidateRecord validates a single record, returning either its
	// normalized form or a *RecordError describing every problem found.
	ValidateRecord(record map[string]interface{}, idx int) (map[string]interface{}, error)
}

// BrandExtractor resolves a brand name from free-text item names for
// sources that ship no brand column.
type BrandExtractor interface {
	BrandFromName(name string) (string, bool)
}

// recordNormalizer is the per-source contract behind the shared batch
// machinery: which fields must be present, and how a record maps to the
// normalized shape.
type recordNormalizer interface {
	requiredFields() []string
	normalizeRecord(record map[string]interface{}) (map[string]interface{}, error)
}

// batchValidator implements Validator on top of a recordNormalizer.
type batchValidator struct {
	recordNormalizer
}

// ValidateBatch validates all records in order.
//
// Parameters:
//   - records: parsed records, in file order
//
// Returns:
//   - *Result: normalized records plus row-numbered errors and warnings
func (v batchValidator) ValidateBatch(records []map[string]interface{}) *Result {
	result := &Result{
		NormalizedData: make([]map[string]interface{}, 0, len(records)),
	}

	for idx, record := range records {
		normalized, err := v.ValidateRecord(record, idx)
		if err != nil {
			var re *RecordError
			if errors.As(err, &re) {
				for _, msg := range re.Errors {
					result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %s", idx+1, msg))
				}
			} else {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: unexpected validation error: %v", idx+1, err))
			}
			flagged := make(map[string]interface{}, len(record)+1)
			for k, val := range record {
				flagged[k] = val
			}
			flagged["_validation_error"] = true
			result.NormalizedData = append(result.NormalizedData, flagged)
			continue
		}
		result.NormalizedData = append(result.NormalizedData, normalized)
	}

	return result
}

// ValidateRecord checks required fields, then delegates to the source's
// normalizer. All missing-field messages are collected before returning.
func (v batchValidator) ValidateRecord(record map[string]interface{}, idx int) (map[string]interface{}, error) {
	var missing []string
	for _, field := range v.requiredFields() {
		value, ok := record[field]
		if !ok || IsBlank(value) {
			missing = append(missing, fmt.Sprintf("Missing required field: %s", field))
		}
	}
	if len(missing) > 0 {
		return nil, &RecordError{Errors: missing}
	}
	return v.normalizeRecord(record)
}

// Registry maps source types to their validators.
type Registry struct {
	validators map[domain.SourceType]Validator
}

// NewRegistry builds the registry with one validator per known source.
//
// Parameters:
//   - brands: brand extractor used by sources without a brand column
//
// Returns:
//   - *Registry: registry covering all known source types
func NewRegistry(brands BrandExtractor) *Registry {
	return &Registry{
		validators: map[domain.SourceType]Validator{
			domain.SourceTypeStockX: NewStockXValidator(brands),
			domain.SourceTypeAlias:  NewAliasValidator(brands),
			domain.SourceTypeNotion: NewNotionValidator(),
			domain.SourceTypeSales:  NewSalesValidator(brands),
		},
	}
}

// ForSource returns the validator for a source type, if one is registered.
// Sources without a validator skip validation entirely.
func (r *Registry) ForSource(source domain.SourceType) (Validator, bool) {
	v, ok := r.validators[source]
	return v, ok
}
