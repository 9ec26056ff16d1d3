package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

func (h *Handlers) CreateQuote(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Corps de requête JSON invalide")
		return
	}
	if errs := p.Validate(false); errs != nil {
		h.Log.Info("create quote: validation failed", zap.Any("details", errs))
		h.writeValidation(w, errs)
		return
	}

	var q quote.Quote
	if err := p.Apply(&q); err != nil {
		writeError(w, http.StatusBadRequest, "Erreurs de validation: "+err.Error())
		return
	}
	q.ApplyPremiums()
	q.CreatedAt = h.now().UTC()

	err = h.Repo.Create(r.Context(), &q)
	switch {
	case errors.Is(err, quote.ErrDuplicate):
		writeError(w, http.StatusConflict,
			fmt.Sprintf("Un devis avec le numéro d'opportunité '%s' existe déjà", q.OpportunityNumber))
		return
	case err != nil:
		h.Log.Error("create quote", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de la création du devis : "+err.Error())
		return
	}

	h.regenerate(r, q)
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Devis créé avec succès",
		"id":      q.ID,
	})
}

// regenerate refreshes the stored documents after a save. A failure is only
// logged: the quote is saved and documents are rendered again on download.
func (h *Handlers) regenerate(r *http.Request, q quote.Quote, stale ...string) {
	if h.Docs == nil {
		return
	}
	if err := h.Docs.Regenerate(r.Context(), q, stale...); err != nil {
		h.Log.Error("regenerate documents", zap.Int64("quote_id", q.ID), zap.Error(err))
	}
}
