package salesreport

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the accepted format of from_date and to_date.
const DateLayout = "2006-01-02"

// Filter keys recognised by the report.
const (
	FilterFromDate   = "from_date"
	FilterToDate     = "to_date"
	FilterFiscalYear = "fiscal_year"
	FilterCompany    = "company"
)

// Filters holds the caller supplied report filters.
type Filters struct {
	FromDate   string `json:"from_date" validate:"required,datetime=2006-01-02"`
	ToDate     string `json:"to_date" validate:"required,datetime=2006-01-02"`
	FiscalYear string `json:"fiscal_year" validate:"required"`
	Company    string `json:"company"`
}

// FiltersFromMap reads the recognised keys from a filter dictionary.
func FiltersFromMap(m map[string]string) Filters {
	return Filters{
		FromDate:   m[FilterFromDate],
		ToDate:     m[FilterToDate],
		FiscalYear: m[FilterFiscalYear],
		Company:    m[FilterCompany],
	}
}

// Scope is a validated filter set with parsed dates and a resolved company.
type Scope struct {
	From       time.Time
	To         time.Time
	FiscalYear string
	Company    string
}

var filterValidator = newFilterValidator()

func newFilterValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the required filters and applies the default company.
// An empty default leaves the company blank, which matches no invoice.
func (f Filters) Validate(defaultCompany string) (Scope, error) {
	f = Filters{
		FromDate:   strings.TrimSpace(f.FromDate),
		ToDate:     strings.TrimSpace(f.ToDate),
		FiscalYear: strings.TrimSpace(f.FiscalYear),
		Company:    strings.TrimSpace(f.Company),
	}
	if err := filterValidator.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Scope{}, err
		}
		return Scope{}, toValidationError(fieldErrs)
	}

	from, err := time.Parse(DateLayout, f.FromDate)
	if err != nil {
		return Scope{}, &ValidationError{Fields: []string{FilterFromDate}, Message: invalidDateMessage(FilterFromDate)}
	}
	to, err := time.Parse(DateLayout, f.ToDate)
	if err != nil {
		return Scope{}, &ValidationError{Fields: []string{FilterToDate}, Message: invalidDateMessage(FilterToDate)}
	}

	company := f.Company
	if company == "" {
		company = strings.TrimSpace(defaultCompany)
	}
	return Scope{From: from, To: to, FiscalYear: f.FiscalYear, Company: company}, nil
}

func toValidationError(fieldErrs validator.ValidationErrors) *ValidationError {
	verr := &ValidationError{}
	missing := false
	for _, fe := range fieldErrs {
		verr.Fields = append(verr.Fields, fe.Field())
		if fe.Tag() == "required" {
			missing = true
		}
	}
	switch {
	case missing:
		verr.Message = MsgMissingFilters
	case len(verr.Fields) > 0:
		verr.Message = invalidDateMessage(verr.Fields[0])
	}
	return verr
}

func invalidDateMessage(field string) string {
	return fmt.Sprintf("Invalid %s: expected a date formatted as YYYY-MM-DD.", field)
}
