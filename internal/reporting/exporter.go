// Package reporting exports a participant's decision trail as an xlsx
// workbook for compliance reviews.
package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shegerlabs/accreditationadmin-sub000/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Exporter writes decision reports to the configured output directory
type Exporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExporter creates a new report exporter
func NewExporter(outputDir string, logger *zap.Logger) (*Exporter, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report output directory: %w", err)
	}
	return &Exporter{
		outputDir: outputDir,
		logger:    logger,
	}, nil
}

// Export writes one participant's trail to an xlsx file and returns its
// path. stepNames maps step IDs to their authored names so the report reads
// like the chain, not like foreign keys.
func (e *Exporter) Export(p *entity.Participant, approvals []*entity.Approval, stepNames map[int64]string) (string, error) {
	e.logger.Info("Exporting decision report",
		zap.Int64("participant_id", p.ID),
		zap.Int("decisions", len(approvals)))

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	// Header block
	setCell(f, sheet, "A1", "Accreditation Decision Report")
	setCell(f, sheet, "A3", "Participant")
	setCell(f, sheet, "B3", p.FullName)
	setCell(f, sheet, "A4", "Email")
	setCell(f, sheet, "B4", p.Email)
	setCell(f, sheet, "A5", "Status")
	setCell(f, sheet, "B5", p.Status)
	if p.CurrentStep != nil {
		setCell(f, sheet, "A6", "Current Step")
		setCell(f, sheet, "B6", p.CurrentStep.Name)
	}

	// Decision table
	headerRow := 8
	setCell(f, sheet, cell("A", headerRow), "Date")
	setCell(f, sheet, cell("B", headerRow), "Step")
	setCell(f, sheet, cell("C", headerRow), "Acted By (user ID)")
	setCell(f, sheet, cell("D", headerRow), "Result")
	setCell(f, sheet, cell("E", headerRow), "Remarks")

	for i, a := range approvals {
		row := headerRow + 1 + i
		stepName := stepNames[a.StepID]
		if stepName == "" {
			stepName = fmt.Sprintf("step %d", a.StepID)
		}
		setCell(f, sheet, cell("A", row), a.CreatedAt.Format("2006-01-02 15:04:05"))
		setCell(f, sheet, cell("B", row), stepName)
		setCell(f, sheet, cell("C", row), a.UserID)
		setCell(f, sheet, cell("D", row), a.Result)
		setCell(f, sheet, cell("E", row), a.Remarks)
	}

	path := filepath.Join(e.outputDir, fmt.Sprintf("participant_%d_decisions.xlsx", p.ID))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	e.logger.Info("Decision report written", zap.String("path", path))
	return path, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func setCell(f *excelize.File, sheet, axis string, value interface{}) {
	// SetCellValue only fails on invalid coordinates, which are fixed here
	_ = f.SetCellValue(sheet, axis, value)
}
