package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

type Handlers struct {
	Repo quote.Repository
	Docs *document.Service
	Log  *zap.Logger

	now func() time.Time
}

func New(repo quote.Repository, docs *document.Service, log *zap.Logger) *Handlers {
	return &Handlers{
		Repo: repo,
		Docs: docs,
		Log:  log,
		now:  time.Now,
	}
}

// writeJSON encodes v before writing the status line.
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.Log.Error("encode response", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Erreur lors de l'encodage de la réponse")
		return
	}
	send(w, status, data)
}

func send(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(append(data, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	data, _ := json.Marshal(map[string]string{"error": msg})
	send(w, status, data)
}

func (h *Handlers) writeValidation(w http.ResponseWriter, errs quote.ValidationErrors) {
	h.writeJSON(w, http.StatusBadRequest, map[string]any{
		"error":   errs.Error(),
		"details": errs,
	})
}

func quoteID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func decodePayload(r *http.Request) (quote.Payload, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var p quote.Payload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if p == nil {
		p = quote.Payload{}
	}
	return p, nil
}
