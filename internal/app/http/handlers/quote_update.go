package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

// UpdateQuote applies the fields present in the body. Absent fields keep
// their stored value; premiums and the date are refreshed.
func (h *Handlers) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	p, err := decodePayload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Corps de requête JSON invalide")
		return
	}
	if errs := p.Validate(true); errs != nil {
		h.writeValidation(w, errs)
		return
	}

	previous := q.OpportunityNumber
	if err := p.Apply(&q); err != nil {
		writeError(w, http.StatusBadRequest, "Erreurs de validation: "+err.Error())
		return
	}
	q.ApplyPremiums()
	q.CreatedAt = h.now().UTC()

	err = h.Repo.Update(r.Context(), &q)
	switch {
	case errors.Is(err, quote.ErrDuplicate):
		writeError(w, http.StatusConflict,
			fmt.Sprintf("Un devis avec le numéro d'opportunité '%s' existe déjà", q.OpportunityNumber))
		return
	case errors.Is(err, quote.ErrNotFound):
		writeError(w, http.StatusNotFound, "Devis non trouvé")
		return
	case err != nil:
		h.Log.Error("update quote", zap.Int64("quote_id", q.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de la mise à jour : "+err.Error())
		return
	}

	var stale []string
	if p.Has("numero_opportunite") && previous != q.OpportunityNumber {
		stale = append(stale, previous)
	}
	h.regenerate(r, q, stale...)
	h.writeJSON(w, http.StatusOK, map[string]string{"message": "Devis mis à jour avec succès"})
}
