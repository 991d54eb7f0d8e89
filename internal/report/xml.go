package report

import (
	"encoding/xml"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// xmlAccount is the element written per client.
type xmlAccount struct {
	XMLName   xml.Name `xml:"account"`
	Client    string   `xml:"client,attr"`
	Available string   `xml:"available"`
	Held      string   `xml:"held"`
	Total     string   `xml:"total"`
	Locked    string   `xml:"locked"`
}

type xmlWriter struct {
	logger *zap.Logger
}

// Write streams one <account> element per row inside an <accounts> root.
func (xw *xmlWriter) Write(w io.Writer, rows []Row) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML declaration: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "accounts"}}
	if err := encoder.EncodeToken(root); err != nil {
		return fmt.Errorf("failed to open root element: %w", err)
	}

	for _, row := range rows {
		account := xmlAccount{
			Client:    row.Client,
			Available: row.Available,
			Held:      row.Held,
			Total:     row.Total,
			Locked:    row.Locked,
		}
		if err := encoder.Encode(account); err != nil {
			xw.logger.Error("failed to write account row",
				zap.String("client", row.Client),
				zap.Error(err),
			)
		}
	}

	if err := encoder.EncodeToken(root.End()); err != nil {
		return fmt.Errorf("failed to close root element: %w", err)
	}
	if err := encoder.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("failed to finish XML: %w", err)
	}
	return nil
}
