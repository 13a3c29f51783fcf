package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/logscost/logscost/internal/domain/entity"
	"github.com/logscost/logscost/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

func (r *ExportRepositoryImpl) ExportToCSV(summaries []entity.CostSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	headers := []string{
		"Account/Profile", "Account ID", "Region", "Log Group", "Retention",
		"Ingestion Bytes", "Avg Stored Bytes",
		"Ingestion Cost", "Storage Cost", "Total Cost",
	}
	if err := writer.Write(headers); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, summary := range summaries {
		for _, rec := range summary.Records {
			record := []string{
				rec.Owner,
				rec.AccountID,
				rec.Region,
				rec.LogGroup,
				retentionLabel(rec.RetentionDays),
				fmt.Sprintf("%d", rec.IngestionBytes),
				fmt.Sprintf("%d", rec.AvgStoredBytes),
				fmt.Sprintf("$%.2f", rec.IngestionCost),
				fmt.Sprintf("$%.2f", rec.StorageCost),
				fmt.Sprintf("$%.2f", rec.TotalCost),
			}
			if err := writer.Write(record); err != nil {
				return "", fmt.Errorf("error writing CSV record: %w", err)
			}
		}
		// Linha de total por conta/perfil
		total := []string{
			summary.Owner, summary.AccountID, "", "TOTAL", "", "", "",
			fmt.Sprintf("$%.2f", summary.IngestionCost),
			fmt.Sprintf("$%.2f", summary.StorageCost),
			fmt.Sprintf("$%.2f", summary.TotalCost),
		}
		if err := writer.Write(total); err != nil {
			return "", fmt.Errorf("error writing CSV record: %w", err)
		}
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToJSON(summaries []entity.CostSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(summaries); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

func (r *ExportRepositoryImpl) ExportToPDF(summaries []entity.CostSummary, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}

	for i, summary := range summaries {
		pdf.AddPage()

		pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
		pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 12, tr(fmt.Sprintf("  CloudWatch Logs Costs: %s", summary.Owner)), "", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		subtitle := fmt.Sprintf("  Account ID: %s | Window: %s to %s",
			summary.AccountID,
			summary.WindowStart.Format("2006-01-02"),
			summary.WindowEnd.Format("2006-01-02"))
		pdf.CellFormat(0, 8, tr(subtitle), "", 1, "L", true, 0, "")
		pdf.Ln(8)

		// Cabeçalho da tabela de log groups
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(62, 7, "Log Group", "B", 0, "L", false, 0, "")
		pdf.CellFormat(22, 7, "Region", "B", 0, "L", false, 0, "")
		pdf.CellFormat(21, 7, "Retention", "B", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, "Ingestion", "B", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, "Storage", "B", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, "Total", "B", 1, "R", false, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, rec := range summary.Records {
			name := rec.LogGroup
			if len(name) > 36 {
				name = name[:33] + "..."
			}
			pdf.CellFormat(62, 6, tr(name), "", 0, "L", false, 0, "")
			pdf.CellFormat(22, 6, tr(rec.Region), "", 0, "L", false, 0, "")
			pdf.CellFormat(21, 6, retentionLabel(rec.RetentionDays), "", 0, "L", false, 0, "")
			pdf.CellFormat(28, 6, fmt.Sprintf("$%.2f", rec.IngestionCost), "", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, fmt.Sprintf("$%.2f", rec.StorageCost), "", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, fmt.Sprintf("$%.2f", rec.TotalCost), "", 1, "R", false, 0, "")
		}

		pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
		pdf.Line(pdf.GetX(), pdf.GetY(), pdf.GetX()+189, pdf.GetY())
		pdf.Ln(2)

		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(105, 7, "Total", "", 0, "L", false, 0, "")
		pdf.CellFormat(28, 7, fmt.Sprintf("$%.2f", summary.IngestionCost), "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, fmt.Sprintf("$%.2f", summary.StorageCost), "", 0, "R", false, 0, "")
		pdf.CellFormat(28, 7, fmt.Sprintf("$%.2f", summary.TotalCost), "", 1, "R", false, 0, "")

		if summary.ActualSpend != nil {
			pdf.Ln(4)
			pdf.SetFont("Arial", "I", 9)
			pdf.CellFormat(0, 6, tr(fmt.Sprintf("Billed AmazonCloudWatch spend for the window (Cost Explorer): $%.2f", *summary.ActualSpend)), "", 1, "L", false, 0, "")
		}

		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		footerText := fmt.Sprintf("Generated by logscost | %s", time.Now().Format("2006-01-02"))
		pdf.CellFormat(0, 10, tr(footerText), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, tr(fmt.Sprintf("Page %d", i+1)), "", 0, "R", false, 0, "")
	}

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// --- Funções Auxiliares ---

// retentionLabel formata a retenção de um log group. Zero significa que o
// grupo nunca expira.
func retentionLabel(days int) string {
	if days <= 0 {
		return "Never"
	}
	return fmt.Sprintf("%dd", days)
}

// generateFilename cria um nome de arquivo único com timestamp e garante que o
// diretório exista.
func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create output directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_1504")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}
