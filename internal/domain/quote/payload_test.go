package quote

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() Payload {
	return Payload{
		"numero_opportunite":  "OPP-1",
		"nom_client":          "Dupont",
		"type_travaux":        "Neuf",
		"cout_ouvrage":        json.Number("150000"),
		"garantie":            "DO",
		"adresse_chantier":    "1 rue de Paris",
		"description_ouvrage": "Maison",
	}
}

func TestPayloadValidateCreate(t *testing.T) {
	assert.Nil(t, validPayload().Validate(false))

	errs := Payload{"nom_client": "x"}.Validate(false)
	require.NotNil(t, errs)
	assert.Equal(t, "Le champ 'numero_opportunite' est requis", errs["numero_opportunite"])
	assert.NotContains(t, errs, "nom_client")
	assert.True(t, strings.HasPrefix(errs.Error(), "Erreurs de validation: "))
	assert.Contains(t, errs.Error(), "numero_opportunite")
}

func TestPayloadValidateNumbers(t *testing.T) {
	tests := []struct {
		field string
		value any
		want  string
	}{
		{"cout_ouvrage", "non-numérique", "Le coût de l'ouvrage doit être un nombre valide"},
		{"cout_ouvrage", 0.0, "Le coût de l'ouvrage doit être supérieur à zéro"},
		{"cout_ouvrage", json.Number("-3"), "Le coût de l'ouvrage doit être supérieur à zéro"},
		{"taux_do", "abc", "Le champ 'taux_do' doit être un nombre valide"},
		{"prime_totale", -1.0, "Le champ 'prime_totale' ne peut pas être négatif"},
		{"garantie", "XYZ", "La garantie doit être 'DO' 'TRC' ou 'DO+TRC'"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			p := validPayload()
			p[tt.field] = tt.value
			errs := p.Validate(false)
			require.NotNil(t, errs)
			assert.Equal(t, tt.want, errs[tt.field])
		})
	}

	p := validPayload()
	p["taux_do"] = "0"
	p["cout_ouvrage"] = "1200,50"
	assert.Nil(t, p.Validate(false))
}

func TestPayloadValidateUpdate(t *testing.T) {
	assert.Nil(t, Payload{"nom_client": "Nouveau"}.Validate(true))
	assert.Nil(t, Payload{}.Validate(true))

	errs := Payload{"nom_client": ""}.Validate(true)
	require.NotNil(t, errs)
	assert.Equal(t, "Le champ 'nom_client' est requis", errs["nom_client"])

	errs = Payload{"cout_ouvrage": "invalide"}.Validate(true)
	assert.Contains(t, errs["cout_ouvrage"], "doit être un nombre")
}

func TestPayloadApply(t *testing.T) {
	q := Quote{OpportunityNumber: "OLD", ClientName: "Keep", AmountDO: Float(10)}
	p := Payload{
		"numero_opportunite": "NEW",
		"montant_do":         "",
		"taux_do":            json.Number("1.5"),
		"client_vip":         true,
		"souhaite_rcmo":      "on",
		"garantie":           "DO+TRC",
		"unknown":            "ignored",
	}
	require.NoError(t, p.Apply(&q))

	assert.Equal(t, "NEW", q.OpportunityNumber)
	assert.Equal(t, "Keep", q.ClientName)
	assert.Nil(t, q.AmountDO)
	assert.Equal(t, 1.5, *q.RateDO)
	assert.True(t, q.VIP)
	assert.True(t, q.WantsRCMO)
	assert.Equal(t, GuaranteeDOTRC, q.Guarantee)
	assert.True(t, p.Has("unknown"))
	assert.False(t, p.Has("nom_client"))

	assert.Error(t, Payload{"montant_trc": "beaucoup"}.Apply(&q))
}

func TestParseNumber(t *testing.T) {
	n, ok := ParseNumber("")
	assert.True(t, ok)
	assert.Nil(t, n)

	n, ok = ParseNumber(" 12,5 ")
	require.True(t, ok)
	assert.Equal(t, 12.5, *n)

	_, ok = ParseNumber("12 000")
	assert.False(t, ok)

	for _, s := range []string{"NaN", "nan", "Inf", "-inf", "Infinity", "+Infinity", "1e400"} {
		n, ok := ParseNumber(s)
		assert.False(t, ok, s)
		assert.Nil(t, n, s)
	}
}

func TestPayloadRejectsNonFiniteNumbers(t *testing.T) {
	for _, v := range []any{"Infinity", "NaN", "-Inf", math.Inf(1), math.NaN()} {
		p := validPayload()
		p["cout_ouvrage"] = v
		p["taux_do"] = v
		errs := p.Validate(false)
		require.NotNil(t, errs, "%v", v)
		assert.Equal(t, "Le coût de l'ouvrage doit être un nombre valide", errs["cout_ouvrage"])
		assert.Equal(t, "Le champ 'taux_do' doit être un nombre valide", errs["taux_do"])
	}
}

func TestPayloadValidateAmounts(t *testing.T) {
	p := validPayload()
	p["montant_do"] = "abc"
	p["franchise_trc"] = "Infinity"
	p["montant_trc"] = json.Number("250000")
	p["franchise_rcmo"] = ""

	errs := p.Validate(false)
	require.NotNil(t, errs)
	assert.Equal(t, "Le champ 'montant_do' doit être un nombre valide", errs["montant_do"])
	assert.Equal(t, "Le champ 'franchise_trc' doit être un nombre valide", errs["franchise_trc"])
	assert.NotContains(t, errs, "montant_trc")
	assert.NotContains(t, errs, "franchise_rcmo")

	errs = Payload{"montant_maintenance_visite": "beaucoup"}.Validate(true)
	assert.Equal(t, ValidationErrors{"montant_maintenance_visite": "Le champ 'montant_maintenance_visite' doit être un nombre valide"}, errs)
}
