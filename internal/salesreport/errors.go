package salesreport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation marks report requests rejected because of their filters.
var ErrValidation = errors.New("salesreport: invalid filters")

// MsgMissingFilters is shown when a required filter is absent.
const MsgMissingFilters = "Please select a Fiscal Year, From Date, and To Date."

// ValidationError lists the filters that failed validation.
type ValidationError struct {
	Fields  []string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("invalid filters: %s", strings.Join(e.Fields, ", "))
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// DataSourceError wraps a failure of the underlying data source.
type DataSourceError struct {
	Op  string
	Err error
}

func (e *DataSourceError) Error() string {
	return fmt.Sprintf("salesreport: %s: %v", e.Op, e.Err)
}

func (e *DataSourceError) Unwrap() error { return e.Err }
