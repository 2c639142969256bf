package mapping

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Canonical contact field names
const (
	FieldFirstName = "firstName"
	FieldLastName  = "lastName"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldAddress   = "address"
	FieldCity      = "city"
	FieldState     = "state"
	FieldZip       = "zip"
)

// Rule assigns a canonical field to any form field id containing one of
// its synonyms (compared lower-cased).
type Rule struct {
	Field    string   `yaml:"field"`
	Synonyms []string `yaml:"synonyms"`
}

// Rules are evaluated in order; the first matching rule wins.
type Rules []Rule

// DefaultRules puts email before address so "email_address" is an email,
// and first/last name before the looser location rules.
var DefaultRules = Rules{
	{Field: FieldEmail, Synonyms: []string{"email", "e-mail"}},
	{Field: FieldPhone, Synonyms: []string{"phone", "mobile", "tel"}},
	{Field: FieldFirstName, Synonyms: []string{"firstname", "first_name", "first-name", "fname"}},
	{Field: FieldLastName, Synonyms: []string{"lastname", "last_name", "last-name", "lname", "surname"}},
	{Field: FieldZip, Synonyms: []string{"zip", "postal", "postcode"}},
	{Field: FieldCity, Synonyms: []string{"city", "town"}},
	{Field: FieldState, Synonyms: []string{"state", "province", "region"}},
	{Field: FieldAddress, Synonyms: []string{"address", "street"}},
}

// Match returns the canonical field for a form field id
func (r Rules) Match(fieldID string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(fieldID))
	if key == "" {
		return "", false
	}
	for _, rule := range r {
		for _, syn := range rule.Synonyms {
			if syn != "" && strings.Contains(key, strings.ToLower(syn)) {
				return rule.Field, true
			}
		}
	}
	return "", false
}

type rulesFile struct {
	Rules Rules `yaml:"rules"`
}

// LoadRules reads a rule table from a YAML file of the form
//
//	rules:
//	  - field: email
//	    synonyms: [email, correo]
//
// An empty path returns DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read field rules %s", path)
	}

	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrapf(err, "parse field rules %s", path)
	}
	if len(f.Rules) == 0 {
		return nil, eris.Errorf("field rules %s: no rules defined", path)
	}
	for i, rule := range f.Rules {
		if !isCanonical(rule.Field) {
			return nil, eris.Errorf("field rules %s: rule %d has unknown field %q", path, i, rule.Field)
		}
	}
	return f.Rules, nil
}

func isCanonical(field string) bool {
	switch field {
	case FieldFirstName, FieldLastName, FieldEmail, FieldPhone,
		FieldAddress, FieldCity, FieldState, FieldZip:
		return true
	}
	return false
}
