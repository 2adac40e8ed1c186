// Package records reads and writes the company spreadsheets the pipeline
// enriches. Input columns are never dropped: well-known columns come out
// first, everything else follows in the order it was first seen.
package records

import (
	"strings"

	"github.com/lead-agent/prospect/models"
)

// canonicalColumns is the fixed output column order. Extra input columns
// are appended after these.
var canonicalColumns = []string{
	"name", "street_address", "city", "state", "zip_code", "phone",
	"website", "emails", "contact_form", "facebook_page", "rating",
	"reviews", "hours", "logo_url",
}

// missingValues are spreadsheet artifacts that mean "no value here".
var missingValues = map[string]bool{
	"":     true,
	"nan":  true,
	"none": true,
	"null": true,
}

// IsMissing reports whether a cell value is effectively empty.
func IsMissing(v string) bool {
	return missingValues[strings.ToLower(strings.TrimSpace(v))]
}

// Record is one company row. It remembers the order in which columns were
// first set so output stays stable.
type Record struct {
	fields map[string]string
	order  []string
}

func NewRecord() *Record {
	return &Record{fields: make(map[string]string)}
}

// Set stores a value, registering the column on first use.
func (r *Record) Set(col, val string) {
	if _, ok := r.fields[col]; !ok {
		r.order = append(r.order, col)
	}
	r.fields[col] = val
}

// Get returns the value for a column, or "" when the record never had it.
func (r *Record) Get(col string) string {
	return r.fields[col]
}

// Has reports whether the column was ever set on this record.
func (r *Record) Has(col string) bool {
	_, ok := r.fields[col]
	return ok
}

// Columns returns this record's columns in first-set order.
func (r *Record) Columns() []string {
	return r.order
}

// HasWebsite reports whether the row already carries a usable website.
func (r *Record) HasWebsite() bool {
	return !IsMissing(r.Get("website"))
}

// Company assembles the identity used for searching and verification.
// Address parts are joined the way a person would write them.
func (r *Record) Company() models.Company {
	var parts []string
	for _, col := range []string{"street_address", "city", "state"} {
		if v := strings.TrimSpace(r.Get(col)); !IsMissing(v) {
			parts = append(parts, v)
		}
	}
	addr := strings.Join(parts, ", ")
	if z := strings.TrimSpace(r.Get("zip_code")); !IsMissing(z) {
		if addr != "" {
			addr += " " + z
		} else {
			addr = z
		}
	}

	return models.Company{
		Name:    strings.TrimSpace(r.Get("name")),
		Address: addr,
		Phone:   strings.TrimSpace(r.Get("phone")),
	}
}
