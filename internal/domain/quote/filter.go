package quote

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateInputLayout = "2006-01-02"

// Filter holds the advanced filters and the free-text search of the quote
// list. Zero values mean "no constraint".
type Filter struct {
	Guarantee   Guarantee
	VIP         *bool
	CreatedFrom time.Time
	CreatedTo   time.Time
	PremiumMin  *float64
	PremiumMax  *float64
	Search      string

	loc *time.Location
}

// FilterFromValues reads the filter from query parameters. Dates are
// interpreted in loc; unparsable values are ignored.
func FilterFromValues(v url.Values, loc *time.Location) Filter {
	f := Filter{loc: loc}
	if g := Guarantee(v.Get("garantie")); g.Valid() {
		f.Guarantee = g
	}
	switch v.Get("client_vip") {
	case "true":
		b := true
		f.VIP = &b
	case "false":
		b := false
		f.VIP = &b
	}
	if t, err := time.ParseInLocation(dateInputLayout, v.Get("date_creation_min"), loc); err == nil {
		f.CreatedFrom = t
	}
	if t, err := time.ParseInLocation(dateInputLayout, v.Get("date_creation_max"), loc); err == nil {
		f.CreatedTo = t
	}
	if n, ok := ParseNumber(v.Get("prime_min")); ok {
		f.PremiumMin = n
	}
	if n, ok := ParseNumber(v.Get("prime_max")); ok {
		f.PremiumMax = n
	}
	f.Search = strings.TrimSpace(v.Get("q"))
	return f
}

// Values is the inverse of FilterFromValues.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Guarantee != "" {
		v.Set("garantie", string(f.Guarantee))
	}
	if f.VIP != nil {
		v.Set("client_vip", strconv.FormatBool(*f.VIP))
	}
	if !f.CreatedFrom.IsZero() {
		v.Set("date_creation_min", f.CreatedFrom.Format(dateInputLayout))
	}
	if !f.CreatedTo.IsZero() {
		v.Set("date_creation_max", f.CreatedTo.Format(dateInputLayout))
	}
	if f.PremiumMin != nil {
		v.Set("prime_min", strconv.FormatFloat(*f.PremiumMin, 'f', -1, 64))
	}
	if f.PremiumMax != nil {
		v.Set("prime_max", strconv.FormatFloat(*f.PremiumMax, 'f', -1, 64))
	}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	return v
}

// Active reports whether any advanced filter is set. The free-text search
// is not an advanced filter.
func (f Filter) Active() bool {
	return f.Guarantee != "" || f.VIP != nil ||
		!f.CreatedFrom.IsZero() || !f.CreatedTo.IsZero() ||
		f.PremiumMin != nil || f.PremiumMax != nil
}

func (f Filter) Match(q Quote) bool {
	if f.Guarantee != "" && q.Guarantee != f.Guarantee {
		return false
	}
	if f.VIP != nil && q.VIP != *f.VIP {
		return false
	}
	if !f.CreatedFrom.IsZero() && q.CreatedAt.Before(f.CreatedFrom) {
		return false
	}
	if !f.CreatedTo.IsZero() {
		end := f.CreatedTo.AddDate(0, 0, 1).Add(-time.Second)
		if q.CreatedAt.After(end) {
			return false
		}
	}
	total := deref(q.PremiumTotal)
	if f.PremiumMin != nil && total < *f.PremiumMin {
		return false
	}
	if f.PremiumMax != nil && total > *f.PremiumMax {
		return false
	}
	if f.Search != "" && !matchesSearch(q, f.Search, f.loc) {
		return false
	}
	return true
}

func (f Filter) Apply(list []Quote) []Quote {
	out := make([]Quote, 0, len(list))
	for _, q := range list {
		if f.Match(q) {
			out = append(out, q)
		}
	}
	return out
}

// matchesSearch looks for the needle in every rendered cell of the row.
func matchesSearch(q Quote, needle string, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	needle = strings.ToLower(needle)
	cells := []string{
		q.OpportunityNumber,
		q.ClientName,
		string(q.Guarantee),
		StatusLabel(q.VIP),
		q.CreatedAt.In(loc).Format("02/01/2006"),
	}
	if q.PremiumTotal != nil {
		cells = append(cells, strconv.FormatFloat(*q.PremiumTotal, 'f', -1, 64), FormatAmount(*q.PremiumTotal))
	}
	for _, c := range cells {
		if strings.Contains(strings.ToLower(c), needle) {
			return true
		}
	}
	return false
}

func StatusLabel(vip bool) string {
	if vip {
		return "VIP"
	}
	return "Standard"
}

type sortKind int

const (
	sortText sortKind = iota
	sortNumber
	sortBool
	sortDate
)

var sortColumns = map[string]sortKind{
	"numero_opportunite": sortText,
	"nom_client":         sortText,
	"garantie":           sortText,
	"client_vip":         sortBool,
	"prime_totale":       sortNumber,
	"date_creation":      sortDate,
}

// Sortable reports whether the list can be sorted on the column.
func Sortable(column string) bool {
	_, ok := sortColumns[column]
	return ok
}

// Sort is the list ordering. A zero Sort keeps the storage order.
type Sort struct {
	Column string
	Desc   bool
}

func SortFromValues(v url.Values) Sort {
	col := v.Get("sort")
	if !Sortable(col) {
		return Sort{}
	}
	return Sort{Column: col, Desc: v.Get("dir") == "desc"}
}

func (s Sort) Values() url.Values {
	v := url.Values{}
	if s.Column == "" {
		return v
	}
	v.Set("sort", s.Column)
	if s.Desc {
		v.Set("dir", "desc")
	} else {
		v.Set("dir", "asc")
	}
	return v
}

// ToggleSort is the header-click transition: an unsorted column starts
// ascending for text and descending otherwise, then flips, then clears.
func ToggleSort(current Sort, column string) Sort {
	kind, ok := sortColumns[column]
	if !ok {
		return current
	}
	firstDesc := kind != sortText
	if current.Column != column {
		return Sort{Column: column, Desc: firstDesc}
	}
	if current.Desc == firstDesc {
		return Sort{Column: column, Desc: !firstDesc}
	}
	return Sort{}
}

// Apply returns a sorted copy of the list.
func (s Sort) Apply(list []Quote) []Quote {
	out := append([]Quote(nil), list...)
	kind, ok := sortColumns[s.Column]
	if !ok {
		return out
	}
	compare := func(a, b Quote) int {
		switch kind {
		case sortNumber:
			return compareFloat(deref(a.PremiumTotal), deref(b.PremiumTotal))
		case sortBool:
			return compareBool(a.VIP, b.VIP)
		case sortDate:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			f, _ := FieldByName(s.Column)
			return strings.Compare(strings.ToLower(f.Text(&a)), strings.ToLower(f.Text(&b)))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		c := compare(out[i], out[j])
		if s.Desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}
