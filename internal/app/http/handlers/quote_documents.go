package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote/document"
)

func (h *Handlers) QuoteDocx(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, document.KindDOCX)
}

func (h *Handlers) QuotePDF(w http.ResponseWriter, r *http.Request) {
	h.serveDocument(w, r, document.KindPDF)
}

func (h *Handlers) serveDocument(w http.ResponseWriter, r *http.Request, kind document.Kind) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	name, data, err := h.Docs.Fetch(r.Context(), q, kind)
	if err != nil {
		h.Log.Error("fetch document", zap.Int64("quote_id", q.ID), zap.String("kind", string(kind)), zap.Error(err))
		label := "DOCX"
		if kind == document.KindPDF {
			label = "PDF"
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Erreur lors de la génération du %s: %v", label, err))
		return
	}

	w.Header().Set("Content-Type", kind.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
