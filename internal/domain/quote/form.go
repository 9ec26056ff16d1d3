package quote

import "strconv"

const msgInvalidNumber = "Format numérique invalide"

type rule struct {
	field      string
	required   bool
	numeric    bool
	requiredIf func(q *Quote) bool
	message    string
}

func withDO(q *Quote) bool   { return q.Guarantee.IncludesDO() }
func withTRC(q *Quote) bool  { return q.Guarantee.IncludesTRC() }
func withRCMO(q *Quote) bool { return q.WantsRCMO }

var rules = []rule{
	{field: "numero_opportunite", required: true, message: "Le numéro d'opportunité est obligatoire"},
	{field: "nom_client", required: true, message: "Le nom du client est obligatoire"},
	{field: "adresse_chantier", required: true, message: "L'adresse du chantier est obligatoire"},

	{field: "garantie", required: true, message: "Le type de garantie est obligatoire"},
	{field: "montant_do", numeric: true, requiredIf: withDO, message: "Le montant de garantie DO est obligatoire"},
	{field: "montant_dm", numeric: true, requiredIf: withTRC, message: "Le montant Dommages matériels est obligatoire"},
	{field: "montant_maintenance_visite", numeric: true, requiredIf: withTRC, message: "Le montant Maintenance-visite est obligatoire"},
	{field: "montant_mesures_conservatoires", numeric: true, requiredIf: withTRC, message: "Le montant Mesures conservatoires est obligatoire"},
	{field: "montant_trc", numeric: true, requiredIf: withTRC, message: "Le montant Responsabilité civile est obligatoire"},
	{field: "montant_rcmo", numeric: true, requiredIf: withRCMO, message: "Le montant de garantie RCMO est obligatoire"},

	{field: "type_travaux", required: true, message: "Le type de travaux est obligatoire"},
	{field: "destination_ouvrage", requiredIf: withDO, message: "La destination de l'ouvrage est obligatoire"},
	{field: "cout_ouvrage", required: true, numeric: true, message: "Le coût de l'ouvrage est obligatoire"},
	{field: "description_ouvrage", required: true, message: "La description de l'ouvrage est obligatoire"},

	{field: "taux_do", numeric: true, requiredIf: withDO, message: "Le taux DO est obligatoire"},
	{field: "taux_trc", numeric: true, requiredIf: withTRC, message: "Le taux TRC est obligatoire"},
	{field: "taux_rcmo", numeric: true, requiredIf: withRCMO, message: "Le taux RCMO est obligatoire"},

	{field: "franchise_trc", numeric: true, requiredIf: withTRC, message: "La franchise pour dommages aux ouvrages est obligatoire"},
	{field: "franchise_rcmo", numeric: true, requiredIf: withRCMO, message: "La franchise RCMO est obligatoire"},
	{field: "franchise_maintenance", numeric: true, requiredIf: withTRC, message: "La franchise Maintenance-visite est obligatoire"},
}

var (
	doGroup   = map[string]bool{"montant_do": true, "taux_do": true}
	trcGroup  = map[string]bool{"montant_dm": true, "montant_maintenance_visite": true, "montant_mesures_conservatoires": true, "montant_trc": true, "taux_trc": true, "franchise_trc": true, "franchise_maintenance": true}
	rcmoGroup = map[string]bool{"montant_rcmo": true, "taux_rcmo": true, "franchise_rcmo": true}
)

// Relevant reports whether a field is shown, and therefore validated, for
// the quote's current guarantee and RCMO choice.
func Relevant(name string, q *Quote) bool {
	switch {
	case name == "destination_ouvrage":
		return q.Guarantee == GuaranteeDO
	case doGroup[name]:
		return q.Guarantee.IncludesDO()
	case trcGroup[name]:
		return q.Guarantee.IncludesTRC()
	case rcmoGroup[name]:
		return q.WantsRCMO
	}
	return true
}

// Form is the editable state behind the quote form: the quote being built,
// the raw text of numeric inputs that did not parse and the error per field.
type Form struct {
	Quote   Quote
	Errors  map[string]string
	invalid map[string]string
}

func NewForm(initial Quote) *Form {
	return &Form{
		Quote:   initial,
		Errors:  map[string]string{},
		invalid: map[string]string{},
	}
}

// Set applies one user edit. Choosing a guarantee blanks the fields it makes
// irrelevant and unchecking RCMO blanks the RCMO fields.
func (f *Form) Set(name, raw string) {
	field, ok := FieldByName(name)
	if !ok || field.Derived {
		return
	}

	switch field.Kind {
	case KindNumber:
		n, valid := ParseNumber(raw)
		field.SetNumber(&f.Quote, n)
		if valid {
			delete(f.invalid, name)
		} else {
			f.invalid[name] = raw
		}
	case KindBool:
		field.SetBool(&f.Quote, ParseCheckbox(raw))
	default:
		field.SetText(&f.Quote, raw)
	}

	switch {
	case name == "garantie":
		f.Quote.ResetGuaranteeGroups()
		for n := range f.invalid {
			if !Relevant(n, &f.Quote) {
				delete(f.invalid, n)
			}
		}
	case name == "souhaite_rcmo" && !f.Quote.WantsRCMO:
		f.Quote.ResetRCMO()
		for n := range rcmoGroup {
			delete(f.invalid, n)
		}
	}

	delete(f.Errors, name)
}

// Load applies a whole submitted form. The guarantee and RCMO selectors are
// applied last so that their resets win over stale inputs of hidden sections.
func (f *Form) Load(get func(name string) string) {
	for _, field := range Fields {
		if field.Derived || field.Name == "garantie" || field.Name == "souhaite_rcmo" {
			continue
		}
		f.Set(field.Name, get(field.Name))
	}
	f.Set("garantie", get("garantie"))
	f.Set("souhaite_rcmo", get("souhaite_rcmo"))
}

// Raw returns the text to show back in an input.
func (f *Form) Raw(name string) string {
	if v, ok := f.invalid[name]; ok {
		return v
	}
	field, ok := FieldByName(name)
	if !ok {
		return ""
	}
	switch field.Kind {
	case KindNumber:
		n := field.Number(&f.Quote)
		if n == nil {
			return ""
		}
		return strconv.FormatFloat(*n, 'f', -1, 64)
	case KindBool:
		if field.Bool(&f.Quote) {
			return "true"
		}
		return ""
	default:
		return field.Text(&f.Quote)
	}
}

func (f *Form) Error(name string) string { return f.Errors[name] }

// Validate runs the rule table and replaces the error map. It reports
// whether the form can be submitted.
func (f *Form) Validate() bool {
	errs := map[string]string{}
	q := &f.Quote

	for _, r := range rules {
		if !Relevant(r.field, q) {
			continue
		}
		field, _ := FieldByName(r.field)
		_, badText := f.invalid[r.field]

		if r.required && f.empty(field) && !badText {
			errs[r.field] = r.message
			continue
		}
		if r.requiredIf != nil && r.requiredIf(q) {
			if r.numeric && (field.Number(q) == nil || badText) {
				errs[r.field] = r.message
				continue
			}
			if !r.numeric && f.empty(field) {
				errs[r.field] = r.message
				continue
			}
		}
		if r.numeric && badText {
			errs[r.field] = msgInvalidNumber
		}
	}

	f.Errors = errs
	return len(errs) == 0
}

func (f *Form) empty(field Field) bool {
	switch field.Kind {
	case KindNumber:
		return field.Number(&f.Quote) == nil
	case KindBool:
		return false
	default:
		return field.Text(&f.Quote) == ""
	}
}

func (f *Form) Premiums() Premiums { return ComputePremiums(f.Quote) }

// Submission returns the quote with its premiums, ready to be sent.
func (f *Form) Submission() Quote {
	q := f.Quote
	q.ApplyPremiums()
	return q
}
