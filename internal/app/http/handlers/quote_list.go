package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

func (h *Handlers) ListQuotes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Repo.List(r.Context())
	if err != nil {
		h.Log.Error("list quotes", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération des devis : "+err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, q)
}

// load fetches the quote named by the {id} route parameter, answering the
// request itself when that fails.
func (h *Handlers) load(w http.ResponseWriter, r *http.Request) (quote.Quote, bool) {
	id, ok := quoteID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Identifiant de devis invalide")
		return quote.Quote{}, false
	}
	q, err := h.Repo.Get(r.Context(), id)
	switch {
	case errors.Is(err, quote.ErrNotFound):
		writeError(w, http.StatusNotFound, "Devis non trouvé")
		return quote.Quote{}, false
	case err != nil:
		h.Log.Error("get quote", zap.Int64("quote_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de la récupération du devis : "+err.Error())
		return quote.Quote{}, false
	}
	return q, true
}
