package gofpdf

import (
	"bytes"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

// Generator renders the commercial proposal directly to PDF. With a font
// directory holding DejaVuSans.ttf and DejaVuSans-Bold.ttf the text is
// embedded as UTF-8; otherwise the core Helvetica font is used.
type Generator struct {
	FontDir string
	log     *zap.Logger
	now     func() time.Time
}

func New(fontDir string, log *zap.Logger) *Generator {
	return &Generator{FontDir: fontDir, log: log, now: time.Now}
}

func (g *Generator) Generate(q quote.Quote) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Proposition commerciale "+q.OpportunityNumber, true)
	pdf.SetAuthor("Tarificateur Assurance", true)

	family := "Helvetica"
	tr := func(s string) string { return s }
	if g.FontDir != "" {
		regularFont := filepath.Join(g.FontDir, "DejaVuSans.ttf")
		boldFont := filepath.Join(g.FontDir, "DejaVuSans-Bold.ttf")
		g.log.Debug("quote pdf: load fonts", zap.String("regular", regularFont), zap.String("bold", boldFont))
		pdf.AddUTF8Font("DejaVu", "", regularFont)
		pdf.AddUTF8Font("DejaVu", "B", boldFont)
		family = "DejaVu"
	} else {
		cp := pdf.UnicodeTranslatorFromDescriptor("")
		tr = func(s string) string { return cp(document.PlainText(s)) }
	}
	if err := pdf.Error(); err != nil {
		return nil, err
	}

	values := document.Values(q)
	generatedAt := g.now().In(document.Location())
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(family, "", 8)
		pdf.CellFormat(95, 5, tr(fmt.Sprintf("Généré le %s", generatedAt.Format("02/01/2006 15:04"))), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 5, fmt.Sprintf("%d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.Cell(0, 10, tr("Proposition commerciale"))
	pdf.Ln(10)

	pdf.SetFont(family, "", 11)
	pdf.Cell(0, 6, tr(fmt.Sprintf("Opportunité n° %s du %s", q.OpportunityNumber, values["date_creation"])))
	pdf.Ln(6)
	pdf.Cell(0, 6, tr("Client : "+q.ClientName))
	pdf.Ln(6)
	pdf.MultiCell(0, 6, tr("Adresse du chantier : "+q.SiteAddress), "", "L", false)
	pdf.Ln(2)

	section := func(title string, rows [][2]string) {
		pdf.Ln(3)
		pdf.SetFont(family, "B", 12)
		pdf.SetFillColor(0, 0, 143)
		pdf.SetTextColor(255, 255, 255)
		pdf.CellFormat(0, 7, tr(title), "", 1, "L", true, 0, "")
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont(family, "", 10)
		for _, r := range rows {
			pdf.CellFormat(110, 6, tr(r[0]), "B", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(trim(r[1], 60)), "B", 1, "R", false, 0, "")
		}
	}

	works := [][2]string{
		{"Type de travaux", q.WorkType},
		{"Coût de l'ouvrage", values["cout_ouvrage"]},
		{"Présence d'existant", values["presence_existant"]},
		{"Garanties", string(q.Guarantee)},
	}
	if q.Guarantee == quote.GuaranteeDO {
		works = append(works, [2]string{"Destination de l'ouvrage", q.Destination})
	}
	section("Caractéristiques de l'ouvrage", works)
	if q.Description != "" {
		pdf.Ln(1)
		pdf.MultiCell(0, 5, tr(q.Description), "", "L", false)
	}

	if q.Guarantee.IncludesDO() {
		section("Dommage Ouvrage", [][2]string{
			{"Montant de garantie", values["montant_do"]},
			{"Taux", rate(q.RateDO)},
			{"Prime DO", values["prime_do"]},
		})
	}
	if q.Guarantee.IncludesTRC() {
		section("Tous Risques Chantier", [][2]string{
			{"Dommages matériels à l'ouvrage", values["montant_dm"]},
			{"Maintenance-visite", values["montant_maintenance_visite"]},
			{"Mesures conservatoires", values["montant_mesures_conservatoires"]},
			{"Responsabilité civile (tous dommages confondus)", values["montant_trc"]},
			{"Franchise dommages aux ouvrages", values["franchise_trc"]},
			{"Franchise maintenance-visite", values["franchise_maintenance"]},
			{"Taux", rate(q.RateTRC)},
			{"Prime TRC", values["prime_trc"]},
		})
	}
	if q.WantsRCMO {
		section("Responsabilité Civile du Maître d'Ouvrage", [][2]string{
			{"Montant de garantie", values["montant_rcmo"]},
			{"Intervenants", values["assurer_intervenants"]},
			{"Franchise", values["franchise_rcmo"]},
			{"Taux", rate(q.RateRCMO)},
			{"Prime RCMO", values["prime_rcmo"]},
		})
	}

	pdf.Ln(4)
	pdf.SetFont(family, "B", 12)
	pdf.CellFormat(110, 8, tr("Prime totale"), "T", 0, "L", false, 0, "")
	pdf.CellFormat(0, 8, tr(values["prime_totale"]), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.log.Error("quote pdf: output failed", zap.Error(err))
		return nil, err
	}
	return buf.Bytes(), nil
}

func rate(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g %%", *v)
}

func trim(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
