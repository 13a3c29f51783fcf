package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/logscost/logscost/internal/domain/entity"
)

// Nomes fixos dos arquivos de gráfico gerados pelo comando graph.
const (
	IngestionChartFile = "ingestion_costs.png"
	StorageChartFile   = "storage_costs.png"
	TotalChartFile     = "total_costs.png"
)

// SaveCostCharts renderiza três gráficos de barras (ingestion, storage, total)
// com uma barra por par conta:log-group, e grava os PNGs em outputDir.
func (r *ExportRepositoryImpl) SaveCostCharts(summaries []entity.CostSummary, outputDir string) ([]string, error) {
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("could not get current working directory: %w", err)
		}
		outputDir = cwd
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("could not create output directory: %w", err)
	}

	var labels []string
	var ingestion, storage, total []float64
	for _, summary := range summaries {
		for _, rec := range summary.Records {
			labels = append(labels, fmt.Sprintf("%s:%s", rec.Owner, rec.LogGroup))
			ingestion = append(ingestion, rec.IngestionCost)
			storage = append(storage, rec.StorageCost)
			total = append(total, rec.TotalCost)
		}
	}
	if len(labels) == 0 {
		return nil, fmt.Errorf("no cost data to graph")
	}

	charts := []struct {
		title    string
		filename string
		values   []float64
	}{
		{"Ingestion Costs by Log Group", IngestionChartFile, ingestion},
		{"Storage Costs by Log Group", StorageChartFile, storage},
		{"Total Costs by Log Group", TotalChartFile, total},
	}

	paths := make([]string, 0, len(charts))
	for _, c := range charts {
		path := filepath.Join(outputDir, c.filename)
		if err := renderBarChart(c.title, labels, c.values, path); err != nil {
			return nil, fmt.Errorf("error rendering %s: %w", c.filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func renderBarChart(title string, labels []string, values []float64, path string) error {
	bars := make([]chart.Value, len(values))
	maxValue := 0.0
	for i, v := range values {
		bars[i] = chart.Value{Value: v, Label: labels[i]}
		if v > maxValue {
			maxValue = v
		}
	}
	if maxValue == 0 {
		// go-chart rejeita um range zerado; força uma escala mínima.
		maxValue = 1.0
	}

	width := 1024
	if w := 80 * len(bars); w > width {
		width = w
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    width,
		Height:   600,
		BarWidth: 48,
		XAxis:    chart.Shown(),
		YAxis: chart.YAxis{
			Style: chart.Shown(),
			Range: &chart.ContinuousRange{Min: 0, Max: maxValue * 1.1},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating chart file: %w", err)
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}
