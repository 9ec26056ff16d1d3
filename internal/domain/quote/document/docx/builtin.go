package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

type line struct{ label, key string }

type section struct {
	title string
	lines []line
}

func sections(q quote.Quote) []section {
	out := []section{
		{"Informations client", []line{
			{"Numéro d'opportunité", "numero_opportunite"},
			{"Client", "nom_client"},
			{"Adresse du chantier", "adresse_chantier"},
			{"Date", "date_creation"},
		}},
		{"Caractéristiques de l'ouvrage", []line{
			{"Type de travaux", "type_travaux"},
			{"Coût de l'ouvrage", "cout_ouvrage"},
			{"Présence d'existant", "presence_existant"},
			{"Description", "description_ouvrage"},
			{"Garanties", "garantie"},
		}},
	}
	if q.Guarantee == quote.GuaranteeDO {
		out[1].lines = append(out[1].lines, line{"Destination de l'ouvrage", "destination_ouvrage"})
	}
	if q.Guarantee.IncludesDO() || !q.Guarantee.Valid() {
		out = append(out, section{"Dommage Ouvrage", []line{
			{"Montant de garantie", "montant_do"},
			{"Prime DO", "prime_do"},
		}})
	}
	if q.Guarantee.IncludesTRC() {
		out = append(out, section{"Tous Risques Chantier", []line{
			{"Dommages matériels à l'ouvrage", "montant_dm"},
			{"Maintenance-visite", "montant_maintenance_visite"},
			{"Mesures conservatoires", "montant_mesures_conservatoires"},
			{"Responsabilité civile", "montant_trc"},
			{"Franchise dommages aux ouvrages", "franchise_trc"},
			{"Franchise maintenance-visite", "franchise_maintenance"},
			{"Prime TRC", "prime_trc"},
		}})
	}
	if q.WantsRCMO {
		out = append(out, section{"Responsabilité Civile du Maître d'Ouvrage", []line{
			{"Montant de garantie", "montant_rcmo"},
			{"Intervenants", "assurer_intervenants"},
			{"Franchise", "franchise_rcmo"},
			{"Prime RCMO", "prime_rcmo"},
		}})
	}
	out = append(out, section{"Récapitulatif", []line{{"Prime totale", "prime_totale"}}})
	return out
}

func paragraph(text string, bold bool) string {
	props := ""
	if bold {
		props = "<w:rPr><w:b/></w:rPr>"
	}
	return fmt.Sprintf(`<w:p><w:r>%s<w:t xml:space="preserve">%s</w:t></w:r></w:p>`, props, xmlEscaper.Replace(text))
}

// Builtin builds a plain template holding the placeholders relevant to the
// quote's guarantees.
func Builtin(q quote.Quote) ([]byte, error) {
	var body strings.Builder
	body.WriteString(paragraph("Proposition commerciale", true))
	for _, s := range sections(q) {
		body.WriteString(paragraph(s.title, true))
		for _, l := range s.lines {
			body.WriteString(paragraph(l.label+" : "+document.Placeholder(l.key), false))
		}
	}

	doc := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", doc},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.content)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
