package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

type input struct {
	Name     string
	Label    string
	Type     string
	Options  []string
	Value    string
	Checked  bool
	Required bool
	Error    string
}

type section struct {
	Title  string
	Inputs []input
}

type premiumLine struct {
	Label  string
	Amount string
}

type formView struct {
	Title       string
	Action      string
	SubmitLabel string
	Editing     bool
	Sections    []section
	Premiums    []premiumLine
	Total       string
	Error       string
	Success     string
	DocxURL     string
	PdfURL      string
	HideForm    bool
}

type fieldSpec struct {
	name     string
	label    string
	kind     string
	options  []string
	required bool
}

type sectionSpec struct {
	title  string
	fields []fieldSpec
}

func guaranteeOptions() []string {
	out := make([]string, len(quote.Guarantees))
	for i, g := range quote.Guarantees {
		out[i] = string(g)
	}
	return out
}

var formLayout = []sectionSpec{
	{"Informations client", []fieldSpec{
		{"numero_opportunite", "Numéro d'opportunité", "text", nil, true},
		{"nom_client", "Nom du client", "text", nil, true},
		{"adresse_chantier", "Adresse du chantier", "text", nil, true},
		{"client_vip", "Client VIP", "checkbox", nil, false},
	}},
	{"Options de garantie", []fieldSpec{
		{"garantie", "Type de garantie", "select", guaranteeOptions(), true},
		{"montant_do", "Montant de garantie DO (€)", "number", nil, true},
		{"souhaite_rcmo", "Souhaite RCMO", "checkbox", nil, false},
		{"assurer_intervenants", "Assurer intervenants", "checkbox", nil, false},
		{"montant_rcmo", "Montant de garantie RCMO (€)", "number", nil, true},
		{"montant_dm", "Montant Dommages matériels à l'ouvrage (€)", "number", nil, true},
		{"montant_maintenance_visite", "Montant Maintenance-visite (€)", "number", nil, true},
		{"montant_mesures_conservatoires", "Montant Mesures conservatoires (€)", "number", nil, true},
		{"montant_trc", "Montant Responsabilité civile (tous dommages confondus) (€)", "number", nil, true},
	}},
	{"Caractéristiques de l'ouvrage", []fieldSpec{
		{"type_travaux", "Type de travaux", "select", quote.WorkTypes, true},
		{"destination_ouvrage", "Destination de l'ouvrage", "select", quote.Destinations, true},
		{"cout_ouvrage", "Coût de l'ouvrage (€)", "number", nil, true},
		{"presence_existant", "Présence d'existant", "checkbox", nil, false},
		{"description_ouvrage", "Description de l'ouvrage", "textarea", nil, true},
	}},
	{"Tarification", []fieldSpec{
		{"taux_do", "Taux DO (%)", "number", nil, true},
		{"taux_trc", "Taux TRC (%)", "number", nil, true},
		{"taux_rcmo", "Taux RCMO (%)", "number", nil, true},
	}},
	{"Franchises", []fieldSpec{
		{"franchise_trc", "Dommages subis par les ouvrages de bâtiment (€)", "number", nil, true},
		{"franchise_rcmo", "Franchise RCMO (€)", "number", nil, true},
		{"franchise_maintenance", "Maintenance-visite (€)", "number", nil, true},
	}},
}

// visible hides the contractors checkbox along with the RCMO group.
func visible(name string, q *quote.Quote) bool {
	if name == "assurer_intervenants" {
		return q.WantsRCMO
	}
	return quote.Relevant(name, q)
}

func buildSections(f *quote.Form) []section {
	var out []section
	for _, spec := range formLayout {
		s := section{Title: spec.title}
		for _, fs := range spec.fields {
			if !visible(fs.name, &f.Quote) {
				continue
			}
			in := input{
				Name:     fs.name,
				Label:    fs.label,
				Type:     fs.kind,
				Options:  fs.options,
				Value:    f.Raw(fs.name),
				Required: fs.required,
				Error:    f.Error(fs.name),
			}
			if fs.kind == "checkbox" {
				in.Checked = in.Value != ""
			}
			s.Inputs = append(s.Inputs, in)
		}
		if len(s.Inputs) > 0 {
			out = append(out, s)
		}
	}
	return out
}

func premiumLines(q *quote.Quote, p quote.Premiums) []premiumLine {
	var out []premiumLine
	if q.Guarantee.IncludesDO() {
		out = append(out, premiumLine{"Prime Dommage Ouvrage", quote.FormatAmount(p.DO)})
	}
	if q.Guarantee.IncludesTRC() {
		out = append(out, premiumLine{"Prime TRC", quote.FormatAmount(p.TRC)})
	}
	if q.WantsRCMO {
		out = append(out, premiumLine{"Prime RCMO", quote.FormatAmount(p.RCMO)})
	}
	return out
}

func (s *Server) formView(f *quote.Form, editing bool, action string) formView {
	p := f.Premiums()
	v := formView{
		Title:       "Nouveau devis",
		Action:      action,
		SubmitLabel: "Valider et générer proposition",
		Editing:     editing,
		Sections:    buildSections(f),
		Premiums:    premiumLines(&f.Quote, p),
		Total:       quote.FormatAmount(p.Total),
	}
	if editing {
		v.Title = "Modifier le devis"
		v.SubmitLabel = "Enregistrer les modifications"
	}
	return v
}

func editURL(id int64) string { return fmt.Sprintf("/devis/%d/edit", id) }

// loadForm reads a posted form. It reports whether the user only asked for
// the premiums to be recomputed.
func loadForm(r *http.Request, initial quote.Quote) (*quote.Form, bool, error) {
	if err := r.ParseForm(); err != nil {
		return nil, false, err
	}
	f := quote.NewForm(initial)
	f.Load(r.PostForm.Get)
	return f, r.PostForm.Get("action") == "recalculer", nil
}

func (s *Server) NewQuote(w http.ResponseWriter, r *http.Request) {
	f := quote.NewForm(quote.Quote{})
	s.render(w, r, http.StatusOK, "form", s.formView(f, false, "/nouveau-devis"))
}

func (s *Server) CreateQuote(w http.ResponseWriter, r *http.Request) {
	f, recompute, err := loadForm(r, quote.Quote{})
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if recompute {
		s.render(w, r, http.StatusOK, "form", s.formView(f, false, "/nouveau-devis"))
		return
	}
	if !f.Validate() {
		s.render(w, r, http.StatusUnprocessableEntity, "form", s.formView(f, false, "/nouveau-devis"))
		return
	}

	id, err := s.api.Create(r.Context(), f.Submission())
	if err != nil {
		s.log.Warn("create quote failed", zap.Error(err))
		v := s.formView(f, false, "/nouveau-devis")
		v.Error = errorText(err, "Une erreur est survenue lors de la création du devis.")
		s.render(w, r, http.StatusOK, "form", v)
		return
	}

	v := s.formView(f, false, "/nouveau-devis")
	v.Success = "Devis créé avec succès !"
	v.DocxURL = s.api.DocxURL(id)
	v.PdfURL = s.api.PdfURL(id)
	v.HideForm = true
	s.render(w, r, http.StatusOK, "form", v)
}

func (s *Server) editTarget(w http.ResponseWriter, r *http.Request) (int64, quote.Quote, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.render(w, r, http.StatusNotFound, "edit_error", nil)
		return 0, quote.Quote{}, false
	}
	q, err := s.api.Get(r.Context(), id)
	if err != nil {
		s.log.Warn("load quote failed", zap.Int64("quote_id", id), zap.Error(err))
		s.render(w, r, http.StatusOK, "edit_error", nil)
		return 0, quote.Quote{}, false
	}
	return id, q, true
}

func (s *Server) editView(f *quote.Form, id int64) formView {
	v := s.formView(f, true, editURL(id))
	v.DocxURL = s.api.DocxURL(id)
	v.PdfURL = s.api.PdfURL(id)
	return v
}

func (s *Server) EditQuote(w http.ResponseWriter, r *http.Request) {
	id, q, ok := s.editTarget(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "form", s.editView(quote.NewForm(q), id))
}

func (s *Server) UpdateQuote(w http.ResponseWriter, r *http.Request) {
	id, q, ok := s.editTarget(w, r)
	if !ok {
		return
	}
	f, recompute, err := loadForm(r, q)
	if err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if recompute {
		s.render(w, r, http.StatusOK, "form", s.editView(f, id))
		return
	}
	if !f.Validate() {
		s.render(w, r, http.StatusUnprocessableEntity, "form", s.editView(f, id))
		return
	}

	v := s.editView(f, id)
	if err := s.api.Update(r.Context(), id, f.Submission()); err != nil {
		s.log.Warn("update quote failed", zap.Int64("quote_id", id), zap.Error(err))
		v.Error = errorText(err, "Une erreur est survenue lors de la modification du devis.")
		s.render(w, r, http.StatusOK, "form", v)
		return
	}
	v.Success = "Devis modifié avec succès!"
	s.render(w, r, http.StatusOK, "form", v)
}
