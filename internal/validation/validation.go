// Package validation checks candidate records against their resource's
// column schema. Validators never panic and always return a full result;
// a violation is a field -> human-readable message pair, not an error.
package validation

import (
	"fmt"
	"net/url"
	"time"

	"github.com/ignite/marketing-console/internal/domain"
)

// Result is the outcome of validating one candidate record.
type Result struct {
	Valid  bool              `json:"isValid"`
	Errors map[string]string `json:"errors"`
}

// Validate runs field-level checks from the column schema followed by the
// descriptor's cross-field hook. It expects a full record: callers validating
// a partial update must merge with the stored record first.
func Validate(desc *domain.Descriptor, rec domain.Record) Result {
	errs := map[string]string{}

	for _, col := range desc.Columns {
		checkField(col, rec, errs)
	}

	if desc.CrossCheck != nil {
		for k, msg := range desc.CrossCheck(rec) {
			if _, taken := errs[k]; !taken {
				errs[k] = msg
			}
		}
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func checkField(col domain.Column, rec domain.Record, errs map[string]string) {
	v, present := rec[col.Key]
	if !present || v == nil {
		if col.Required {
			errs[col.Key] = "is required"
		}
		return
	}

	switch col.Type {
	case domain.TypeString, domain.TypeDate:
		s, ok := rec.String(col.Key)
		if !ok {
			errs[col.Key] = "must be a string"
			return
		}
		if s == "" {
			if col.Required {
				errs[col.Key] = "is required"
			}
			return
		}
		if col.Type == domain.TypeDate {
			if _, err := time.Parse("2006-01-02", s); err != nil {
				errs[col.Key] = "must be a date in YYYY-MM-DD format"
			}
			return
		}
		if col.MaxLen > 0 && len([]rune(s)) > col.MaxLen {
			errs[col.Key] = fmt.Sprintf("must be at most %d characters", col.MaxLen)
			return
		}
		if len(col.Enum) > 0 && !contains(col.Enum, s) {
			errs[col.Key] = fmt.Sprintf("must be one of %v", col.Enum)
			return
		}
		if col.URL {
			u, err := url.Parse(s)
			if err != nil || !u.IsAbs() || u.Host == "" {
				errs[col.Key] = "must be a valid absolute URL"
			}
		}

	case domain.TypeInteger:
		n, ok := rec.Int(col.Key)
		if !ok {
			errs[col.Key] = "must be an integer"
			return
		}
		checkBounds(col, float64(n), errs)

	case domain.TypeNumber:
		n, ok := rec.Float(col.Key)
		if !ok {
			errs[col.Key] = "must be a number"
			return
		}
		checkBounds(col, n, errs)

	case domain.TypeBoolean:
		if _, ok := rec.Bool(col.Key); !ok {
			errs[col.Key] = "must be a boolean"
		}
	}
}

func checkBounds(col domain.Column, n float64, errs map[string]string) {
	if col.Min != nil && n < *col.Min {
		errs[col.Key] = fmt.Sprintf("must be at least %v", *col.Min)
		return
	}
	if col.Max != nil && n > *col.Max {
		errs[col.Key] = fmt.Sprintf("must be at most %v", *col.Max)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
