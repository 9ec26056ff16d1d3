package quote

type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindBool
)

// Field describes one editable attribute of a Quote by its wire name.
type Field struct {
	Name    string
	Kind    Kind
	Derived bool

	text   func(*Quote) *string
	number func(*Quote) **float64
	flag   func(*Quote) *bool
}

func textField(name string, p func(*Quote) *string) Field {
	return Field{Name: name, Kind: KindText, text: p}
}

func numberField(name string, p func(*Quote) **float64) Field {
	return Field{Name: name, Kind: KindNumber, number: p}
}

func boolField(name string, p func(*Quote) *bool) Field {
	return Field{Name: name, Kind: KindBool, flag: p}
}

func derivedField(name string, p func(*Quote) **float64) Field {
	f := numberField(name, p)
	f.Derived = true
	return f
}

// Fields lists every attribute except id and date_creation, in form order.
var Fields = []Field{
	textField("numero_opportunite", func(q *Quote) *string { return &q.OpportunityNumber }),
	textField("nom_client", func(q *Quote) *string { return &q.ClientName }),
	textField("adresse_chantier", func(q *Quote) *string { return &q.SiteAddress }),
	boolField("client_vip", func(q *Quote) *bool { return &q.VIP }),
	textField("garantie", func(q *Quote) *string { return (*string)(&q.Guarantee) }),
	numberField("montant_do", func(q *Quote) **float64 { return &q.AmountDO }),
	boolField("souhaite_rcmo", func(q *Quote) *bool { return &q.WantsRCMO }),
	boolField("assurer_intervenants", func(q *Quote) *bool { return &q.InsureContractors }),
	numberField("montant_rcmo", func(q *Quote) **float64 { return &q.AmountRCMO }),
	numberField("montant_dm", func(q *Quote) **float64 { return &q.AmountDM }),
	numberField("montant_maintenance_visite", func(q *Quote) **float64 { return &q.AmountMaintenanceVisit }),
	numberField("montant_mesures_conservatoires", func(q *Quote) **float64 { return &q.AmountProtectiveMeasures }),
	numberField("montant_trc", func(q *Quote) **float64 { return &q.AmountTRC }),
	textField("type_travaux", func(q *Quote) *string { return &q.WorkType }),
	textField("destination_ouvrage", func(q *Quote) *string { return &q.Destination }),
	numberField("cout_ouvrage", func(q *Quote) **float64 { return &q.WorksCost }),
	boolField("presence_existant", func(q *Quote) *bool { return &q.ExistingStructure }),
	textField("description_ouvrage", func(q *Quote) *string { return &q.Description }),
	numberField("taux_do", func(q *Quote) **float64 { return &q.RateDO }),
	numberField("taux_trc", func(q *Quote) **float64 { return &q.RateTRC }),
	numberField("taux_rcmo", func(q *Quote) **float64 { return &q.RateRCMO }),
	numberField("franchise_trc", func(q *Quote) **float64 { return &q.DeductibleTRC }),
	numberField("franchise_rcmo", func(q *Quote) **float64 { return &q.DeductibleRCMO }),
	numberField("franchise_maintenance", func(q *Quote) **float64 { return &q.DeductibleMaintenance }),
	derivedField("prime_do", func(q *Quote) **float64 { return &q.PremiumDO }),
	derivedField("prime_trc", func(q *Quote) **float64 { return &q.PremiumTRC }),
	derivedField("prime_rcmo", func(q *Quote) **float64 { return &q.PremiumRCMO }),
	derivedField("prime_totale", func(q *Quote) **float64 { return &q.PremiumTotal }),
}

var fieldIndex = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

func FieldByName(name string) (Field, bool) {
	f, ok := fieldIndex[name]
	return f, ok
}

func (f Field) Text(q *Quote) string {
	if f.text == nil {
		return ""
	}
	return *f.text(q)
}

func (f Field) SetText(q *Quote, v string) {
	if f.text != nil {
		*f.text(q) = v
	}
}

func (f Field) Number(q *Quote) *float64 {
	if f.number == nil {
		return nil
	}
	return *f.number(q)
}

func (f Field) SetNumber(q *Quote, v *float64) {
	if f.number != nil {
		*f.number(q) = v
	}
}

func (f Field) Bool(q *Quote) bool {
	if f.flag == nil {
		return false
	}
	return *f.flag(q)
}

func (f Field) SetBool(q *Quote, v bool) {
	if f.flag != nil {
		*f.flag(q) = v
	}
}

// Value returns the field as a plain Go value: string, *float64 or bool.
func (f Field) Value(q *Quote) any {
	switch f.Kind {
	case KindNumber:
		return f.Number(q)
	case KindBool:
		return f.Bool(q)
	default:
		return f.Text(q)
	}
}

// Columns returns the wire names of every field, in table order.
func Columns() []string {
	out := make([]string, 0, len(Fields))
	for _, f := range Fields {
		out = append(out, f.Name)
	}
	return out
}

// Ptr returns a pointer to the field storage (*string, **float64 or *bool),
// suitable as a scan destination.
func (f Field) Ptr(q *Quote) any {
	switch f.Kind {
	case KindNumber:
		return f.number(q)
	case KindBool:
		return f.flag(q)
	default:
		return f.text(q)
	}
}
