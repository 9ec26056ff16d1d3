package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/app/config"
	apphttp "tarificateur/go_backend/internal/app/http"
	"tarificateur/go_backend/internal/app/http/handlers"
	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
	"tarificateur/go_backend/internal/domain/quote/document/docx"
	pdfgen "tarificateur/go_backend/internal/domain/quote/document/gofpdf"
	"tarificateur/go_backend/internal/infra/db/sqlite"
	"tarificateur/go_backend/internal/infra/docstore"
)

type env struct {
	srv  *httptest.Server
	repo *sqlite.Repo
	docs *docstore.Dir
}

func setup(t *testing.T, cfg config.Config) env {
	t.Helper()
	log := zap.NewNop()

	repo, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(repo.Close)
	require.NoError(t, repo.Migrate(context.Background()))

	dir, err := docstore.NewDir(t.TempDir())
	require.NoError(t, err)
	docs := document.NewService(dir, docx.New("", log), pdfgen.New("", log), log)

	srv := httptest.NewServer(apphttp.NewRouter(cfg, handlers.New(repo, docs, log), log))
	t.Cleanup(srv.Close)
	return env{srv: srv, repo: repo, docs: dir}
}

func validBody() map[string]any {
	return map[string]any{
		"numero_opportunite":  "OPP-2024-001",
		"nom_client":          "Client Test",
		"type_travaux":        "Neuf",
		"cout_ouvrage":        100000.0,
		"garantie":            "DO+TRC",
		"souhaite_rcmo":       true,
		"destination_ouvrage": "",
		"adresse_chantier":    "1 rue du Test",
		"description_ouvrage": "Construction neuve",
		"taux_do":             1.5,
		"taux_trc":            "0.5",
		"taux_rcmo":           0.2,
		"montant_do":          "",
		"prime_totale":        1.0,
	}
}

func send(t *testing.T, method, url string, body any, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func getQuote(t *testing.T, e env, id int) quote.Quote {
	t.Helper()
	resp, err := http.Get(e.srv.URL + "/api/devis/" + strconv.Itoa(id))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var q quote.Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&q))
	return q
}

func TestHealth(t *testing.T) {
	e := setup(t, config.Config{})
	resp, err := http.Get(e.srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))
}

func TestCreateQuote(t *testing.T) {
	e := setup(t, config.Config{})

	resp, body := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, "Devis créé avec succès", body["message"])
	assert.EqualValues(t, 1, body["id"])

	q := getQuote(t, e, 1)
	assert.Equal(t, "OPP-2024-001", q.OpportunityNumber)
	assert.Nil(t, q.AmountDO)
	assert.Equal(t, 0.5, *q.RateTRC)
	assert.False(t, q.CreatedAt.IsZero())
	// Premiums are recomputed: 1500 + 500 + 200.
	assert.InDelta(t, 1500, *q.PremiumDO, 1e-9)
	assert.InDelta(t, 500, *q.PremiumTRC, 1e-9)
	assert.InDelta(t, 200, *q.PremiumRCMO, 1e-9)
	assert.InDelta(t, 2200, *q.PremiumTotal, 1e-9)

	entries, err := readDir(e.docs.Path)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	resp, err = http.Get(e.srv.URL + "/api/devis")
	require.NoError(t, err)
	defer resp.Body.Close()
	var list []quote.Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Len(t, list, 1)
}

func TestCreateQuoteValidation(t *testing.T) {
	e := setup(t, config.Config{})

	resp, body := send(t, http.MethodPost, e.srv.URL+"/api/devis", map[string]any{
		"nom_client":   "Client Incomplet",
		"type_ouvrage": "Habitation",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "numero_opportunite")
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Le champ 'numero_opportunite' est requis", details["numero_opportunite"])

	invalid := validBody()
	invalid["cout_ouvrage"] = "non-numérique"
	resp, body = send(t, http.MethodPost, e.srv.URL+"/api/devis", invalid)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "doit être un nombre")

	resp, _ = send(t, http.MethodPost, e.srv.URL+"/api/devis", "not an object")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateQuoteRejectsNonFiniteNumbers(t *testing.T) {
	e := setup(t, config.Config{})

	for _, v := range []string{"Infinity", "NaN", "-inf"} {
		body := validBody()
		body["cout_ouvrage"] = v
		resp, out := send(t, http.MethodPost, e.srv.URL+"/api/devis", body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, v)
		details, ok := out["details"].(map[string]any)
		require.True(t, ok, v)
		assert.Equal(t, "Le coût de l'ouvrage doit être un nombre valide", details["cout_ouvrage"])
	}

	resp, err := http.Get(e.srv.URL + "/api/devis")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []quote.Quote
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Empty(t, list)
}

func TestAmountValidationDetails(t *testing.T) {
	e := setup(t, config.Config{})

	body := validBody()
	body["montant_trc"] = "abc"
	resp, out := send(t, http.MethodPost, e.srv.URL+"/api/devis", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details, ok := out["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Le champ 'montant_trc' doit être un nombre valide", details["montant_trc"])

	resp, _ = send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, out = send(t, http.MethodPatch, e.srv.URL+"/api/devis/1", map[string]any{"franchise_maintenance": "Infinity"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	details, ok = out["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Le champ 'franchise_maintenance' doit être un nombre valide", details["franchise_maintenance"])
}

func TestCreateDuplicateQuote(t *testing.T) {
	e := setup(t, config.Config{})
	resp, _ := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	dup := validBody()
	dup["nom_client"] = "Client Duplicate"
	resp, body := send(t, http.MethodPost, e.srv.URL+"/api/devis", dup)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, body["error"], "existe déjà")
}

func TestUpdateQuote(t *testing.T) {
	e := setup(t, config.Config{})
	resp, _ := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	before := getQuote(t, e, 1)

	resp, body := send(t, http.MethodPatch, e.srv.URL+"/api/devis/1", map[string]any{
		"nom_client":         "Client Modifié",
		"cout_ouvrage":       200000.0,
		"numero_opportunite": "OPP-2024-002",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Devis mis à jour avec succès", body["message"])

	after := getQuote(t, e, 1)
	assert.Equal(t, "Client Modifié", after.ClientName)
	assert.Equal(t, 200000.0, *after.WorksCost)
	assert.Equal(t, "Neuf", after.WorkType)
	assert.InDelta(t, 4400, *after.PremiumTotal, 1e-9)
	assert.False(t, after.CreatedAt.Before(before.CreatedAt))

	// Documents of the old number are gone, the new ones are stored.
	entries, err := readDir(e.docs.Path)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, name := range entries {
		assert.Contains(t, name, "OPP-2024-002")
	}
}

func TestUpdateQuoteErrors(t *testing.T) {
	e := setup(t, config.Config{})

	resp, body := send(t, http.MethodPatch, e.srv.URL+"/api/devis/999", map[string]any{"nom_client": "N'existe pas"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = send(t, http.MethodPatch, e.srv.URL+"/api/devis/abc", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = send(t, http.MethodPatch, e.srv.URL+"/api/devis/1", map[string]any{"cout_ouvrage": "invalide"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = send(t, http.MethodPatch, e.srv.URL+"/api/devis/1", map[string]any{"nom_client": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadDocuments(t *testing.T) {
	e := setup(t, config.Config{})
	resp, _ := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, kind := range []document.Kind{document.KindDOCX, document.KindPDF} {
		resp, err := http.Get(e.srv.URL + "/api/devis/1/" + string(kind))
		require.NoError(t, err)
		data, err := readAll(resp)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, kind.ContentType(), resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment; filename=\"Proposition_commerciale_OPP-2024-001_")
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "."+string(kind))
		assert.NotEmpty(t, data)
	}

	resp, err := http.Get(e.srv.URL + "/api/devis/42/pdf")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDownloadRegeneratesMissingDocument(t *testing.T) {
	e := setup(t, config.Config{})
	resp, _ := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NoError(t, e.docs.DeleteMatching(context.Background(), document.Prefix("OPP-2024-001"), func(string) bool { return true }))

	resp, err := http.Get(e.srv.URL + "/api/devis/1/pdf")
	require.NoError(t, err)
	data, err := readAll(resp)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWriteRoutesRequireToken(t *testing.T) {
	e := setup(t, config.Config{APIToken: "secret", CORSAllowOrigin: "*"})

	resp, body := send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody())
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.NotEmpty(t, body["error"])

	resp, _ = send(t, http.MethodPost, e.srv.URL+"/api/devis", validBody(), "Authorization", "Bearer secret")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Reads stay open.
	resp, err := http.Get(e.srv.URL + "/api/devis")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	e := setup(t, config.Config{CORSAllowOrigin: "http://localhost:3000"})
	req, err := http.NewRequest(http.MethodOptions, e.srv.URL+"/api/devis", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "PATCH")
}
