package service

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	appErrors "github.com/noah-isme/acadplan-api/pkg/errors"
)

const dateLayout = "2006-01-02"

// newValidator builds a validator that reports fields by their JSON name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// requiredFieldsError converts validator output into a 400 enumerating
// the exact missing required fields.
func requiredFieldsError(err error, fallback string) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		var missing []string
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
			}
		}
		if len(missing) > 0 {
			return appErrors.MissingFields(missing...)
		}
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fallback)
}

// parseDate converts a textual date into a nullable value. Empty input
// maps to nil rather than an error.
func parseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, trimmed)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD: "+raw)
	}
	return &t, nil
}

// applyDatePatch implements partial-patch semantics for date fields: a
// nil patch leaves the target untouched, an empty string clears it to
// null, anything else replaces it.
func applyDatePatch(target **time.Time, patch *string) error {
	if patch == nil {
		return nil
	}
	parsed, err := parseDate(*patch)
	if err != nil {
		return err
	}
	*target = parsed
	return nil
}
