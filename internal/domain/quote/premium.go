package quote

type Premiums struct {
	DO    float64 `json:"prime_do"`
	TRC   float64 `json:"prime_trc"`
	RCMO  float64 `json:"prime_rcmo"`
	Total float64 `json:"prime_totale"`
}

// ComputePremiums applies the percentage rates to the works cost. A missing
// cost or rate counts as zero; a guarantee that is not subscribed yields a
// zero premium whatever its rate.
func ComputePremiums(q Quote) Premiums {
	cost := deref(q.WorksCost)

	var p Premiums
	if q.Guarantee.IncludesDO() {
		p.DO = cost * deref(q.RateDO) / 100
	}
	if q.Guarantee.IncludesTRC() {
		p.TRC = cost * deref(q.RateTRC) / 100
	}
	if q.WantsRCMO {
		p.RCMO = cost * deref(q.RateRCMO) / 100
	}
	p.Total = p.DO + p.TRC + p.RCMO
	return p
}

func (q *Quote) ApplyPremiums() Premiums {
	p := ComputePremiums(*q)
	q.PremiumDO = Float(p.DO)
	q.PremiumTRC = Float(p.TRC)
	q.PremiumRCMO = Float(p.RCMO)
	q.PremiumTotal = Float(p.Total)
	return p
}
