package document

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tarificateur/go_backend/internal/domain/quote"
)

func TestFilename(t *testing.T) {
	q := quote.Quote{
		OpportunityNumber: "OPP/2024:01",
		CreatedAt:         time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
	}
	assert.Equal(t, "Proposition_commerciale_OPP_2024_01_15-01-2024_10-30.docx", Filename(q, KindDOCX))
	assert.Equal(t, "Proposition_commerciale_OPP_2024_01_15-01-2024_10-30.pdf", Filename(q, KindPDF))

	summer := q
	summer.CreatedAt = time.Date(2024, 7, 1, 22, 5, 0, 0, time.UTC)
	assert.Equal(t, "Proposition_commerciale_OPP_2024_01_02-07-2024_00-05.pdf", Filename(summer, KindPDF))
}

func TestPrefixKeepsAccentsAndSpaces(t *testing.T) {
	assert.Equal(t, "Proposition_commerciale_Été 2024-A.1_", Prefix("Été 2024-A.1"))
}

func TestOwns(t *testing.T) {
	assert.True(t, Owns("A", "Proposition_commerciale_A_01-01-2024_10-00.pdf"))
	assert.True(t, Owns("A", "Proposition_commerciale_A_31-12-2024_23-59.docx"))
	assert.False(t, Owns("A", "Proposition_commerciale_A_B_01-01-2024_10-00.pdf"))
	assert.False(t, Owns("A", "Proposition_commerciale_AB_01-01-2024_10-00.pdf"))
	assert.False(t, Owns("A", "Proposition_commerciale_A_01-01-2024_10-00_02-02-2024_10-00.pdf"))
	assert.False(t, Owns("A", "Proposition_commerciale_A_01-01-2024_10-00.txt"))
	assert.True(t, Owns("OPP/1", "Proposition_commerciale_OPP_1_01-01-2024_10-00.pdf"))
}

func TestTemplateName(t *testing.T) {
	tests := []struct {
		guarantee quote.Guarantee
		rcmo      bool
		want      string
		known     bool
	}{
		{quote.GuaranteeDO, false, "template_do.docx", true},
		{quote.GuaranteeDO, true, "template_do_rcmo.docx", true},
		{quote.GuaranteeTRC, false, "template_trc.docx", true},
		{quote.GuaranteeTRC, true, "template_trc_rcmo.docx", true},
		{quote.GuaranteeDOTRC, false, "template_do_trc.docx", true},
		{quote.GuaranteeDOTRC, true, "template_do_trc_rcmo.docx", true},
		{"", true, "template_do.docx", false},
	}
	for _, tt := range tests {
		name, known := TemplateName(quote.Quote{Guarantee: tt.guarantee, WantsRCMO: tt.rcmo})
		assert.Equal(t, tt.want, name)
		assert.Equal(t, tt.known, known)
	}
}

func TestValues(t *testing.T) {
	q := quote.Quote{
		OpportunityNumber: "OPP-1",
		ClientName:        "Dupont",
		Guarantee:         quote.GuaranteeTRC,
		ExistingStructure: true,
		InsureContractors: true,
		WorksCost:         quote.Float(1500.5),
		CreatedAt:         time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC),
	}
	v := Values(q)

	assert.Equal(t, "OPP-1", v["numero_opportunite"])
	assert.Equal(t, "TRC", v["garantie"])
	assert.Equal(t, "Oui", v["presence_existant"])
	assert.Equal(t, "AVEC", v["assurer_intervenants"])
	assert.Equal(t, "02/05/2024", v["date_creation"])
	assert.Equal(t, "0,00 €", v["montant_do"])
	assert.Contains(t, v["cout_ouvrage"], "500,50 €")

	q.InsureContractors = false
	assert.Equal(t, "SANS", Values(q)["assurer_intervenants"])
}

func TestKindContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", KindPDF.ContentType())
	assert.Contains(t, KindDOCX.ContentType(), "wordprocessingml")
}
