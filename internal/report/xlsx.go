package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/config"
)

type xlsxWriter struct {
	logger *zap.Logger
	sheet  string
}

// Write builds the workbook in memory and streams it to w.
func (xw *xlsxWriter) Write(w io.Writer, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), xw.sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(config.OutputHeader))
	for i, name := range config.OutputHeader {
		header[i] = name
	}
	if err := f.SetSheetRow(xw.sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	next := 2
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, next)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", next, err)
		}

		values := make([]interface{}, 0, 5)
		for _, field := range row.Fields() {
			values = append(values, field)
		}

		if err := f.SetSheetRow(xw.sheet, cell, &values); err != nil {
			xw.logger.Error("failed to write account row",
				zap.String("client", row.Client),
				zap.Error(err),
			)
			continue
		}
		next++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
