package quote

import (
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var frPrinter = message.NewPrinter(language.French)

// FormatAmount renders a euro amount the way French users read it:
// grouped thousands, decimal comma, two decimals.
func FormatAmount(v float64) string {
	return frPrinter.Sprintf("%.2f", v) + " €"
}

// FormatOptionalAmount renders an absent amount as zero.
func FormatOptionalAmount(v *float64) string {
	return FormatAmount(deref(v))
}

func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return "N/A"
	}
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("02/01/2006")
}

func YesNo(v bool) string {
	if v {
		return "Oui"
	}
	return "Non"
}
