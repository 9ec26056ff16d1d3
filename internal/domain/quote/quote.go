package quote

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("quote not found")
	ErrDuplicate = errors.New("quote already exists")
)

type Guarantee string

const (
	GuaranteeDO    Guarantee = "DO"
	GuaranteeTRC   Guarantee = "TRC"
	GuaranteeDOTRC Guarantee = "DO+TRC"
)

var Guarantees = []Guarantee{GuaranteeDO, GuaranteeTRC, GuaranteeDOTRC}

func (g Guarantee) Valid() bool {
	switch g {
	case GuaranteeDO, GuaranteeTRC, GuaranteeDOTRC:
		return true
	}
	return false
}

func (g Guarantee) IncludesDO() bool  { return g == GuaranteeDO || g == GuaranteeDOTRC }
func (g Guarantee) IncludesTRC() bool { return g == GuaranteeTRC || g == GuaranteeDOTRC }

// Work types and destinations offered by the form.
var (
	WorkTypes    = []string{"Neuf", "Rénovation légère", "Rénovation lourde"}
	Destinations = []string{"Habitation", "Hors habitation"}
)

type Quote struct {
	ID                int64     `json:"id"`
	OpportunityNumber string    `json:"numero_opportunite"`
	ClientName        string    `json:"nom_client"`
	CreatedAt         time.Time `json:"date_creation"`

	WorkType          string    `json:"type_travaux"`
	WorksCost         *float64  `json:"cout_ouvrage"`
	ExistingStructure bool      `json:"presence_existant"`
	VIP               bool      `json:"client_vip"`
	Guarantee         Guarantee `json:"garantie"`
	WantsRCMO         bool      `json:"souhaite_rcmo"`
	InsureContractors bool      `json:"assurer_intervenants"`
	Destination       string    `json:"destination_ouvrage"`
	SiteAddress       string    `json:"adresse_chantier"`
	Description       string    `json:"description_ouvrage"`

	RateDO   *float64 `json:"taux_do"`
	RateTRC  *float64 `json:"taux_trc"`
	RateRCMO *float64 `json:"taux_rcmo"`

	DeductibleRCMO        *float64 `json:"franchise_rcmo"`
	DeductibleTRC         *float64 `json:"franchise_trc"`
	DeductibleMaintenance *float64 `json:"franchise_maintenance"`

	AmountDO                 *float64 `json:"montant_do"`
	AmountDM                 *float64 `json:"montant_dm"`
	AmountMaintenanceVisit   *float64 `json:"montant_maintenance_visite"`
	AmountProtectiveMeasures *float64 `json:"montant_mesures_conservatoires"`
	AmountTRC                *float64 `json:"montant_trc"`
	AmountRCMO               *float64 `json:"montant_rcmo"`

	PremiumDO    *float64 `json:"prime_do"`
	PremiumTRC   *float64 `json:"prime_trc"`
	PremiumRCMO  *float64 `json:"prime_rcmo"`
	PremiumTotal *float64 `json:"prime_totale"`
}

// ResetGuaranteeGroups blanks the fields that the current guarantee and
// RCMO choice make irrelevant.
func (q *Quote) ResetGuaranteeGroups() {
	if !q.Guarantee.IncludesDO() {
		q.AmountDO = nil
		q.RateDO = nil
	}
	if !q.Guarantee.IncludesTRC() {
		q.AmountDM = nil
		q.AmountMaintenanceVisit = nil
		q.AmountProtectiveMeasures = nil
		q.AmountTRC = nil
		q.RateTRC = nil
		q.DeductibleTRC = nil
		q.DeductibleMaintenance = nil
	}
}

func (q *Quote) ResetRCMO() {
	q.AmountRCMO = nil
	q.RateRCMO = nil
	q.DeductibleRCMO = nil
	q.InsureContractors = false
}

func Float(v float64) *float64 { return &v }

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
