// Package mapping turns an arbitrary form submission into a canonical contact.
package mapping

import (
	"html"
	"sort"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/joshbakergf/lead-manager-sub001/pkg/models"
)

// Result keeps the mapped fields apart from the untouched originals so later
// steps can still find custom fields the mapping did not cover.
type Result struct {
	// Mapped holds values under their API field names
	Mapped map[string]string
	// Original holds every submitted field under its own id
	Original map[string]string

	claimed map[string]bool
}

var stripMarkup = bluemonday.StrictPolicy()

// Map applies explicit field mappings when given, otherwise rules.
func Map(formData, fieldMappings map[string]string, rules Rules) Result {
	res := Result{
		Mapped:   make(map[string]string, len(formData)),
		Original: make(map[string]string, len(formData)),
		claimed:  make(map[string]bool, len(formData)),
	}
	for id, value := range formData {
		res.Original[id] = value
	}

	if len(fieldMappings) > 0 {
		for id, value := range formData {
			if apiName, ok := fieldMappings[id]; ok && apiName != "" {
				res.Mapped[apiName] = value
				res.claimed[id] = true
			}
		}
		return res
	}

	// sorted so that the first field claiming a name is deterministic
	for _, id := range sortedKeys(formData) {
		field, ok := rules.Match(id)
		if !ok {
			continue
		}
		res.claimed[id] = true
		if _, taken := res.Mapped[field]; taken {
			continue
		}
		res.Mapped[field] = formData[id]
	}
	return res
}

// Contact builds the canonical contact from the mapped fields only
func (r Result) Contact() models.Contact {
	return models.Contact{
		FirstName: r.field(FieldFirstName),
		LastName:  r.field(FieldLastName),
		Email:     r.field(FieldEmail),
		Phone:     r.field(FieldPhone),
		Address:   r.field(FieldAddress),
		City:      r.field(FieldCity),
		State:     r.field(FieldState),
		Zip:       r.field(FieldZip),
	}
}

// Unclaimed returns the original fields that no mapping or contact rule
// consumed.
func (r Result) Unclaimed() map[string]string {
	out := make(map[string]string)
	for id, value := range r.Original {
		if !r.claimed[id] {
			out[id] = value
		}
	}
	return out
}

// Extra returns the mapped fields outside the canonical contact, such as
// payment fields named by explicit mappings.
func (r Result) Extra() map[string]string {
	out := make(map[string]string)
	for name, value := range r.Mapped {
		if !isCanonical(name) {
			out[name] = value
		}
	}
	return out
}

func (r Result) field(name string) string {
	v, ok := r.Mapped[name]
	if !ok {
		return ""
	}
	return clean(v)
}

func clean(v string) string {
	v = strings.TrimSpace(v)
	if !strings.ContainsAny(v, "<>") {
		return v
	}
	return strings.TrimSpace(html.UnescapeString(stripMarkup.Sanitize(v)))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
