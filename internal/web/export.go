package web

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Export downloads the filtered and sorted list as a workbook.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	st := readListState(r.URL.Query())
	list, err := s.api.List(r.Context())
	if err != nil {
		s.log.Error("export: load quotes", zap.Error(err))
		http.Error(w, "Impossible de charger les devis. Veuillez réessayer.", http.StatusBadGateway)
		return
	}

	data, err := exportWorkbook(st.apply(list))
	if err != nil {
		s.log.Error("export: build workbook", zap.Error(err))
		http.Error(w, "export failed", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("devis_%s.xlsx", time.Now().In(location()).Format("02-01-2006"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Write(data)
}

func exportWorkbook(list []quote.Quote) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Devis"
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	headers := []string{"Numéro d'opportunité", "Client", "Garanties", "Statut", "Prime DO", "Prime TRC", "Prime RCMO", "Prime totale", "Date création"}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#00008F"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(`#,##0.00 "€"`)})
	if err != nil {
		return nil, fmt.Errorf("create money style: %w", err)
	}
	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return nil, fmt.Errorf("create date style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "I1", headerStyle); err != nil {
		return nil, err
	}

	for i, q := range list {
		r := i + 2
		values := []any{
			q.OpportunityNumber,
			q.ClientName,
			string(q.Guarantee),
			quote.StatusLabel(q.VIP),
			value(q.PremiumDO),
			value(q.PremiumTRC),
			value(q.PremiumRCMO),
			value(q.PremiumTotal),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		dateCell, _ := excelize.CoordinatesToCellName(9, r)
		if !q.CreatedAt.IsZero() {
			local := q.CreatedAt.In(location())
			day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
			if err := f.SetCellValue(sheet, dateCell, day); err != nil {
				return nil, err
			}
		}
	}
	if n := len(list); n > 0 {
		last := n + 1
		if err := f.SetCellStyle(sheet, "E2", fmt.Sprintf("H%d", last), moneyStyle); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, "I2", fmt.Sprintf("I%d", last), dateStyle); err != nil {
			return nil, err
		}
	}

	widths := []float64{24, 30, 12, 12, 14, 14, 14, 16, 14}
	for i, wd := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, wd); err != nil {
			return nil, fmt.Errorf("set col width %s: %w", col, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func strPtr(s string) *string { return &s }
