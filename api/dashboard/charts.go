package dashboard

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/occupancy/core/occupancy"
)

// Chart names served under /charts/{name}.
const (
	ChartStatus    = "status"
	ChartLineTypes = "line-types"
	ChartHistory   = "history"
)

var palette = []string{"#636efa", "#ef553b", "#00cc96", "#ab63fa", "#ffa15a", "#19d3f3"}

type renderer interface {
	Render(w io.Writer) error
}

func renderChart(name string, v occupancy.View, w io.Writer) error {
	var c renderer
	switch name {
	case ChartStatus:
		c = statusChart(v.Summary.Status)
	case ChartLineTypes:
		c = lineTypeChart(v.Summary.LineTypes)
	case ChartHistory:
		c = historyChart(v.History)
	default:
		return fmt.Errorf("unknown chart %q", name)
	}
	return c.Render(w)
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     "100%",
		Height:    "360px",
	})
}

// statusChart is a donut of passengers per status.
func statusChart(counts []occupancy.Count) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(initOpts("Status de Utilização"))
	data := make([]opts.PieData, 0, len(counts))
	for _, c := range counts {
		data = append(data, opts.PieData{Name: c.Label, Value: c.Count})
	}
	pie.AddSeries("Qtd", data, charts.WithPieChartOpts(opts.PieChart{Radius: []string{"40%", "75%"}}))
	return pie
}

// lineTypeChart shows one coloured bar per line type.
func lineTypeChart(counts []occupancy.Count) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(initOpts("Passageiros por Tipo de Linha"))
	labels := make([]string, 0, len(counts))
	data := make([]opts.BarData, 0, len(counts))
	for i, c := range counts {
		labels = append(labels, c.Label)
		data = append(data, opts.BarData{
			Name:      c.Label,
			Value:     c.Count,
			ItemStyle: &opts.ItemStyle{Color: palette[i%len(palette)]},
		})
	}
	bar.SetXAxis(labels).AddSeries("Qtd", data)
	return bar
}

func historyChart(days []occupancy.DayCount) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		initOpts("Histórico"),
		charts.WithXAxisOpts(opts.XAxis{Name: "Data"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Qtd"}),
	)
	labels := make([]string, 0, len(days))
	data := make([]opts.LineData, 0, len(days))
	for _, d := range days {
		labels = append(labels, d.Label)
		data = append(data, opts.LineData{Value: d.Count, Symbol: "circle", SymbolSize: 8})
	}
	line.SetXAxis(labels).AddSeries("Qtd", data)
	return line
}
