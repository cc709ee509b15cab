package model

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// FieldKind is the input kind of a contract type field
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldDate     FieldKind = "date"
	FieldTextarea FieldKind = "textarea"
	FieldSelect   FieldKind = "select"
	FieldFile     FieldKind = "file"
)

// DefaultValidityMonths applies when a contract type has no validity period.
const DefaultValidityMonths = 12

// Field describes one piece of data a contract type requires
type Field struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    FieldKind `json:"type"`
	Options []string  `json:"options"`
}

// ContractType is a template for a category of contract
type ContractType struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	RequiredFields []Field   `json:"requiredFields"`
	Template       string    `json:"template"`
	ValidityPeriod int       `json:"validityPeriod"` // months
	CreatedAt      time.Time `json:"createdAt"`
}

// Clone returns a copy whose field definitions can be changed independently.
func (t *ContractType) Clone() *ContractType {
	if t == nil {
		return nil
	}
	out := *t
	if t.RequiredFields != nil {
		out.RequiredFields = make([]Field, len(t.RequiredFields))
		for i, f := range t.RequiredFields {
			f.Options = slices.Clone(f.Options)
			out.RequiredFields[i] = f
		}
	}
	return &out
}

// DataErrors lists the fields of submitted contract data that failed validation.
type DataErrors struct {
	Missing []string
	Invalid []string
}

func (e DataErrors) Empty() bool {
	return len(e.Missing) == 0 && len(e.Invalid) == 0
}

// Fields returns every offending field name, missing ones first.
func (e DataErrors) Fields() []string {
	return append(slices.Clone(e.Missing), e.Invalid...)
}

func (e DataErrors) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "Missing required fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "Invalid values for fields: "+strings.Join(e.Invalid, ", "))
	}
	return strings.Join(parts, "; ")
}

// ValidateData checks data against the type's required fields. File fields
// are uploaded separately and never checked here.
func (t *ContractType) ValidateData(data map[string]any) DataErrors {
	var errs DataErrors
	for _, f := range t.RequiredFields {
		if f.Kind == FieldFile {
			continue
		}
		v, ok := data[f.Name]
		if !ok || isEmpty(v) {
			errs.Missing = append(errs.Missing, f.Name)
			continue
		}
		if !f.accepts(v) {
			errs.Invalid = append(errs.Invalid, f.Name)
		}
	}
	return errs
}

// ExpiryFrom returns the expiry date of a contract issued at issued.
func (t *ContractType) ExpiryFrom(issued time.Time) time.Time {
	months := t.ValidityPeriod
	if months <= 0 {
		months = DefaultValidityMonths
	}
	return issued.AddDate(0, months, 0)
}

func (f Field) accepts(v any) bool {
	switch f.Kind {
	case FieldNumber:
		switch n := v.(type) {
		case float64, float32, int, int64, json.Number:
			return true
		case string:
			_, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
			return err == nil
		}
		return false
	case FieldDate:
		s, ok := v.(string)
		if !ok {
			return false
		}
		return parseDate(s)
	case FieldSelect:
		if len(f.Options) == 0 {
			return true
		}
		return slices.Contains(f.Options, fmt.Sprint(v))
	default:
		return true
	}
}

func parseDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func isEmpty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}
