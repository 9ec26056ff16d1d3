package quote

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Payload is a decoded JSON request body. Keys that are absent are left
// untouched by Apply, which gives PATCH its partial-update semantics.
type Payload map[string]any

type ValidationErrors map[string]string

func (e ValidationErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "Erreurs de validation: " + strings.Join(parts, "; ")
}

var requiredFields = []string{
	"numero_opportunite", "nom_client", "type_travaux",
	"cout_ouvrage", "garantie",
	"adresse_chantier", "description_ouvrage",
}

var nonNegativeFields = []string{
	"taux_do", "taux_trc", "taux_rcmo",
	"prime_do", "prime_trc", "prime_rcmo", "prime_totale",
}

// Validate checks a request body. On create every required field must be
// present and non-empty; on update only the fields present are checked.
func (p Payload) Validate(update bool) ValidationErrors {
	errs := ValidationErrors{}

	for _, name := range requiredFields {
		v, ok := p[name]
		if (!update && (!ok || isEmpty(v))) || (update && ok && isEmpty(v)) {
			errs[name] = fmt.Sprintf("Le champ '%s' est requis", name)
		}
	}

	if v, ok := p["cout_ouvrage"]; ok && !isEmpty(v) {
		n, valid := parseNumber(v)
		switch {
		case !valid || n == nil:
			errs["cout_ouvrage"] = "Le coût de l'ouvrage doit être un nombre valide"
		case *n <= 0:
			errs["cout_ouvrage"] = "Le coût de l'ouvrage doit être supérieur à zéro"
		}
	}

	for _, name := range nonNegativeFields {
		v, ok := p[name]
		if !ok || isEmpty(v) {
			continue
		}
		n, valid := parseNumber(v)
		switch {
		case !valid || n == nil:
			errs[name] = fmt.Sprintf("Le champ '%s' doit être un nombre valide", name)
		case *n < 0:
			errs[name] = fmt.Sprintf("Le champ '%s' ne peut pas être négatif", name)
		}
	}

	for _, f := range Fields {
		if f.Kind != KindNumber || errs[f.Name] != "" {
			continue
		}
		v, ok := p[f.Name]
		if !ok || isEmpty(v) {
			continue
		}
		if _, valid := parseNumber(v); !valid {
			errs[f.Name] = fmt.Sprintf("Le champ '%s' doit être un nombre valide", f.Name)
		}
	}

	if v, ok := p["garantie"]; ok && !isEmpty(v) {
		s, isString := v.(string)
		if !isString || !Guarantee(s).Valid() {
			errs["garantie"] = "La garantie doit être 'DO' 'TRC' ou 'DO+TRC'"
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Apply copies every known field present in the payload onto q. Empty
// strings of numeric fields are stored as null.
func (p Payload) Apply(q *Quote) error {
	for _, f := range Fields {
		v, ok := p[f.Name]
		if !ok {
			continue
		}
		switch f.Kind {
		case KindNumber:
			n, valid := parseNumber(v)
			if !valid {
				return fmt.Errorf("%s: not a number: %v", f.Name, v)
			}
			f.SetNumber(q, n)
		case KindBool:
			f.SetBool(q, parseBool(v))
		default:
			f.SetText(q, textOf(v))
		}
	}
	return nil
}

// Has reports whether the payload carries the field.
func (p Payload) Has(name string) bool {
	_, ok := p[name]
	return ok
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// parseNumber accepts JSON numbers and numeric strings. A nil value or an
// empty string is a valid absent number.
func parseNumber(v any) (*float64, bool) {
	switch t := v.(type) {
	case nil:
		return nil, true
	case float64:
		return finite(t)
	case int:
		return Float(float64(t)), true
	case int64:
		return Float(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, false
		}
		return finite(f)
	case string:
		return ParseNumber(t)
	}
	return nil, false
}

// ParseNumber parses user input. A decimal comma is accepted; NaN and
// infinities are not numbers here.
func ParseNumber(s string) (*float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return nil, false
	}
	return finite(f)
}

func finite(f float64) (*float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return Float(f), true
}

func parseBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return ParseCheckbox(t)
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	}
	return false
}

// ParseCheckbox interprets an HTML checkbox or query value.
func ParseCheckbox(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes", "oui":
		return true
	}
	return false
}

func textOf(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
