package web

import (
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

type column struct {
	Label  string
	Column string
}

var listColumns = []column{
	{"Numéro d'opportunité", "numero_opportunite"},
	{"Client", "nom_client"},
	{"Garanties", "garantie"},
	{"Statut", "client_vip"},
	{"Primes", "prime_totale"},
	{"Date création", "date_creation"},
}

type header struct {
	Label     string
	Href      string
	Indicator string
}

type row struct {
	ID         int64
	Number     string
	Client     string
	Guarantee  string
	BadgeClass string
	VIP        bool
	Status     string
	Premium    string
	Date       string
	EditURL    string
	DocxURL    string
	PdfURL     string
}

type listView struct {
	Error         string
	Headers       []header
	Rows          []row
	Total         int
	Shown         int
	FiltersActive bool
	Filters       url.Values
	Guarantees    []quote.Guarantee
	ExportURL     string
	ResetURL      string
}

// listState is the filter and sort carried by the query string.
type listState struct {
	filter quote.Filter
	sort   quote.Sort
}

func readListState(v url.Values) listState {
	return listState{
		filter: quote.FilterFromValues(v, location()),
		sort:   quote.SortFromValues(v),
	}
}

func (st listState) query(s quote.Sort) string {
	v := st.filter.Values()
	for k, vals := range s.Values() {
		v[k] = vals
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

// reset drops the advanced filters and keeps the search and the sort.
func (st listState) reset() listState {
	return listState{filter: quote.Filter{Search: st.filter.Search}, sort: st.sort}
}

func (st listState) apply(list []quote.Quote) []quote.Quote {
	return st.sort.Apply(st.filter.Apply(list))
}

func badgeClass(g quote.Guarantee) string {
	switch g {
	case quote.GuaranteeDO:
		return "bg-info"
	case quote.GuaranteeTRC:
		return "bg-success"
	case quote.GuaranteeDOTRC:
		return "bg-primary"
	}
	return "bg-secondary"
}

func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	st := readListState(r.URL.Query())
	view := listView{
		Filters:       st.filter.Values(),
		FiltersActive: st.filter.Active(),
		Guarantees:    quote.Guarantees,
		ExportURL:     "/devis/export.xlsx" + st.query(st.sort),
		ResetURL:      "/" + st.reset().query(st.sort),
	}

	for _, c := range listColumns {
		next := quote.ToggleSort(st.sort, c.Column)
		h := header{Label: c.Label, Href: "/" + st.query(next)}
		if st.sort.Column == c.Column {
			h.Indicator = " ▲"
			if st.sort.Desc {
				h.Indicator = " ▼"
			}
		}
		view.Headers = append(view.Headers, h)
	}

	list, err := s.api.List(r.Context())
	if err != nil {
		s.log.Error("load quotes", zap.Error(err))
		view.Error = "Impossible de charger les devis. Veuillez réessayer."
		s.render(w, r, http.StatusOK, "list", view)
		return
	}

	shown := st.apply(list)
	view.Total = len(list)
	view.Shown = len(shown)
	for _, q := range shown {
		premium := "N/A"
		if q.PremiumTotal != nil && *q.PremiumTotal != 0 {
			premium = quote.FormatAmount(*q.PremiumTotal)
		}
		view.Rows = append(view.Rows, row{
			ID:         q.ID,
			Number:     q.OpportunityNumber,
			Client:     q.ClientName,
			Guarantee:  string(q.Guarantee),
			BadgeClass: badgeClass(q.Guarantee),
			VIP:        q.VIP,
			Status:     quote.StatusLabel(q.VIP),
			Premium:    premium,
			Date:       quote.FormatDate(q.CreatedAt, location()),
			EditURL:    editURL(q.ID),
			DocxURL:    s.api.DocxURL(q.ID),
			PdfURL:     s.api.PdfURL(q.ID),
		})
	}
	s.render(w, r, http.StatusOK, "list", view)
}
