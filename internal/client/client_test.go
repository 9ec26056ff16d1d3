package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarificateur/go_backend/internal/domain/quote"
)

func TestClient(t *testing.T) {
	var (
		gotAuth string
		gotBody map[string]any
		calls   int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		gotAuth = r.Header.Get("Authorization")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/devis":
			json.NewEncoder(w).Encode([]quote.Quote{{ID: 1, OpportunityNumber: "A"}, {ID: 2, OpportunityNumber: "B"}})
		case r.Method == http.MethodGet && r.URL.Path == "/api/devis/2":
			json.NewEncoder(w).Encode(quote.Quote{ID: 2, OpportunityNumber: "B", PremiumTotal: quote.Float(10)})
		case r.Method == http.MethodPost && r.URL.Path == "/api/devis":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]any{"message": "Devis créé avec succès", "id": 7})
		case r.Method == http.MethodPatch && r.URL.Path == "/api/devis/7":
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(map[string]string{"message": "Devis mis à jour avec succès"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok")
	ctx := context.Background()

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, "Bearer tok", gotAuth)

	q, err := c.Get(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, *q.PremiumTotal)

	id, err := c.Create(ctx, quote.Quote{OpportunityNumber: "NEW", Guarantee: quote.GuaranteeDO})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, "NEW", gotBody["numero_opportunite"])
	assert.Equal(t, "DO", gotBody["garantie"])
	assert.Contains(t, gotBody, "montant_do")
	assert.Nil(t, gotBody["montant_do"])

	require.NoError(t, c.Update(ctx, 7, quote.Quote{ClientName: "X"}))
	assert.Equal(t, "X", gotBody["nom_client"])
	assert.Equal(t, 4, calls, "one request per call")

	assert.Equal(t, srv.URL+"/api/devis/7/docx", c.DocxURL(7))
	assert.Equal(t, srv.URL+"/api/devis/7/pdf", c.PdfURL(7))
}

func TestClientAPIError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   "Un devis avec le numéro d'opportunité 'A' existe déjà",
			"details": map[string]string{"numero_opportunite": "doublon"},
		})
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").Create(context.Background(), quote.Quote{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "existe déjà")
	assert.Equal(t, "doublon", apiErr.Details["numero_opportunite"])
	assert.Equal(t, 1, calls, "no retry")
}

func TestClientErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").List(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "api: status 502", apiErr.Error())
}

func TestClientTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, "").List(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}
