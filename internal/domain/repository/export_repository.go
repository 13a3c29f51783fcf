package repository

import (
	"github.com/logscost/logscost/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(summaries []entity.CostSummary, filename string, outputDir string) (string, error)
	ExportToJSON(summaries []entity.CostSummary, filename string, outputDir string) (string, error)
	ExportToPDF(summaries []entity.CostSummary, filename string, outputDir string) (string, error)

	// SaveCostCharts writes ingestion_costs.png, storage_costs.png and
	// total_costs.png into outputDir and returns their paths.
	SaveCostCharts(summaries []entity.CostSummary, outputDir string) ([]string, error)
}
