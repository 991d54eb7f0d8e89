package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ginjaninja78/payments-engine/internal/config"
)

type csvWriter struct {
	logger *zap.Logger
}

func (cw *csvWriter) Write(w io.Writer, rows []Row) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(config.OutputHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := writer.Write(row.Fields()); err != nil {
			cw.logger.Error("failed to write account row",
				zap.String("client", row.Client),
				zap.Error(err),
			)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush report: %w", err)
	}
	return nil
}
