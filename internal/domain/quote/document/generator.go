package document

import (
	"regexp"
	"strings"
	"time"
	_ "time/tzdata"

	"tarificateur/go_backend/internal/domain/quote"
)

type Kind string

const (
	KindDOCX Kind = "docx"
	KindPDF  Kind = "pdf"
)

func (k Kind) ContentType() string {
	if k == KindPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

type Generator interface {
	Generate(q quote.Quote) ([]byte, error)
}

var paris = func() *time.Location {
	loc, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		return time.UTC
	}
	return loc
}()

// Location is the time zone used for file names and printed dates.
func Location() *time.Location { return paris }

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_\-. ]`)

func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// Prefix is shared by every document generated for an opportunity number.
func Prefix(opportunityNumber string) string {
	return "Proposition_commerciale_" + sanitize(opportunityNumber) + "_"
}

var stampSuffix = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}_\d{2}-\d{2}\.(docx|pdf)$`)

// Owns reports whether name is a document of the opportunity number, and not
// of a longer number sharing its prefix.
func Owns(opportunityNumber, name string) bool {
	p := Prefix(opportunityNumber)
	return strings.HasPrefix(name, p) && stampSuffix.MatchString(name[len(p):])
}

// Filename names a document after the opportunity and the Paris wall-clock
// time of the quote's last save.
func Filename(q quote.Quote, kind Kind) string {
	return Prefix(q.OpportunityNumber) + q.CreatedAt.In(paris).Format("02-01-2006_15-04") + "." + string(kind)
}

// TemplateName picks the Word template for the guarantee and RCMO choice.
// ok is false when the guarantee is unknown and the DO template is used.
func TemplateName(q quote.Quote) (name string, ok bool) {
	var base string
	switch q.Guarantee {
	case quote.GuaranteeDOTRC:
		base = "template_do_trc"
	case quote.GuaranteeTRC:
		base = "template_trc"
	case quote.GuaranteeDO:
		base = "template_do"
	default:
		return "template_do.docx", false
	}
	if q.WantsRCMO {
		base += "_rcmo"
	}
	return base + ".docx", true
}

// Values maps every placeholder name to its printed value.
func Values(q quote.Quote) map[string]string {
	amount := quote.FormatOptionalAmount
	contractors := "SANS"
	if q.InsureContractors {
		contractors = "AVEC"
	}
	return map[string]string{
		"numero_opportunite":  q.OpportunityNumber,
		"nom_client":          q.ClientName,
		"destination_ouvrage": q.Destination,
		"type_travaux":        q.WorkType,
		"cout_ouvrage":        amount(q.WorksCost),
		"presence_existant":   quote.YesNo(q.ExistingStructure),
		"garantie":            string(q.Guarantee),
		"description_ouvrage": q.Description,
		"adresse_chantier":    q.SiteAddress,
		"date_creation":       quote.FormatDate(q.CreatedAt, paris),

		"prime_do":   amount(q.PremiumDO),
		"montant_do": amount(q.AmountDO),

		"prime_trc":                      amount(q.PremiumTRC),
		"franchise_trc":                  amount(q.DeductibleTRC),
		"franchise_maintenance":          amount(q.DeductibleMaintenance),
		"montant_dm":                     amount(q.AmountDM),
		"montant_maintenance_visite":     amount(q.AmountMaintenanceVisit),
		"montant_mesures_conservatoires": amount(q.AmountProtectiveMeasures),
		"montant_trc":                    amount(q.AmountTRC),

		"prime_rcmo":           amount(q.PremiumRCMO),
		"franchise_rcmo":       amount(q.DeductibleRCMO),
		"assurer_intervenants": contractors,
		"montant_rcmo":         amount(q.AmountRCMO),

		"prime_totale": amount(q.PremiumTotal),
	}
}

// Placeholder is the marker written in templates for a value name.
func Placeholder(name string) string { return "{{" + name + "}}" }

// PlainText swaps the narrow no-break space, missing from cp1252, for a
// regular no-break space.
func PlainText(s string) string {
	return strings.NewReplacer("\u202f", "\u00a0").Replace(s)
}
