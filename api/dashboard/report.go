package dashboard

import (
	"fmt"
	"io"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/kilianp07/occupancy/core/model"
	"github.com/kilianp07/occupancy/core/occupancy"
)

var detailCols = []struct {
	title string
	width float64
}{
	{"Status", 32}, {"Hora", 18}, {"Nome", 60}, {"Empresa", 40}, {"Linha Passageiro", 40},
}

// renderReport writes the view as an A4 PDF: cards, per-line occupancy and
// the detail table.
func renderReport(v occupancy.View, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Core fonts are cp1252.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Painel MES", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Painel MES")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if v.Empty {
		pdf.Cell(0, 7, tr("Nenhum dado disponível."))
		return pdf.Output(w)
	}
	pdf.Cell(0, 7, "Data: "+v.Selection.Date.Format(model.DateLayout))
	pdf.Ln(7)
	if v.Pin.Active() {
		pdf.Cell(0, 7, tr("Linha fixada: "+v.Pin.Line))
		pdf.Ln(7)
	}
	pdf.Cell(0, 7, fmt.Sprintf("Qtd. Passageiros: %d", v.Summary.Passengers))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Qtd. Rotas: %d", v.Summary.Routes))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Ocupação Média: %.1f%%", v.Summary.MeanPercent)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, tr("Ocupação por Linha"))
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 10)
	for _, h := range []string{"Linha", "Passageiros", "%"} {
		pdf.CellFormat(40, 6, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range v.Summary.Lines {
		pdf.CellFormat(40, 6, tr(l.Line), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 6, strconv.Itoa(l.Passengers), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, strconv.Itoa(l.Percent)+"%", "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Detalhamento")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "B", 9)
	for _, c := range detailCols {
		pdf.CellFormat(c.width, 6, c.title, "1", 0, "", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 9)
	for _, d := range v.Details {
		row := []string{d.PassengerType, d.Hour, d.Name, d.Company, d.PassengerLine}
		for i, c := range detailCols {
			pdf.CellFormat(c.width, 6, tr(row[i]), "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}
	return pdf.Output(w)
}
