package report

import (
	"bytes"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ginjaninja78/payments-engine/internal/ledger"
	"github.com/ginjaninja78/payments-engine/internal/money"
)

func testAccounts() []ledger.Summary {
	return []ledger.Summary{
		{
			Client: 1,
			Balance: money.Balance{
				Available: money.MustParseAmount("1.5"),
				Held:      money.MustParseAmount("0.25"),
			},
		},
		{
			Client: 2,
			Balance: money.Balance{
				Available: money.MustParseAmount("0"),
				Held:      money.MustParseAmount("0"),
			},
			Locked: true,
		},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(testAccounts())

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "1.5000", "0.2500", "1.7500", "false"}, rows[0].Fields())
	assert.Equal(t, []string{"2", "0.0000", "0.0000", "0.0000", "true"}, rows[1].Fields())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "csv", testAccounts(), Options{}))

	expected := "client,available,held,total,locked\n" +
		"1,1.5000,0.2500,1.7500,false\n" +
		"2,0.0000,0.0000,0.0000,true\n"
	assert.Equal(t, expected, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "", nil, Options{}))
	assert.Equal(t, "client,available,held,total,locked\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "xlsx", testAccounts(), Options{SheetName: "clients"}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "clients", f.GetSheetName(0))

	rows, err := f.GetRows("clients")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"client", "available", "held", "total", "locked"}, rows[0])
	assert.Equal(t, []string{"1", "1.5000", "0.2500", "1.7500", "false"}, rows[1])
	assert.Equal(t, []string{"2", "0.0000", "0.0000", "0.0000", "true"}, rows[2])
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "xml", testAccounts(), Options{}))

	out := buf.String()
	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, out, `<account client="1">`)
	assert.Contains(t, out, `<total>1.7500</total>`)

	var doc struct {
		Accounts []xmlAccount `xml:"account"`
	}
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &doc))
	require.Len(t, doc.Accounts, 2)
	assert.Equal(t, "2", doc.Accounts[1].Client)
	assert.Equal(t, "true", doc.Accounts[1].Locked)
}

func TestNewWriterUnknownFormat(t *testing.T) {
	_, err := NewWriter("pdf", Options{})
	assert.ErrorContains(t, err, "unsupported report format")
}

// shortWriter fails after limit bytes.
type shortWriter struct {
	limit int
	buf   bytes.Buffer
}

func (s *shortWriter) Write(p []byte) (int, error) {
	if s.buf.Len()+len(p) > s.limit {
		return 0, errors.New("disk full")
	}
	return s.buf.Write(p)
}

func TestWriteXMLLogsRowFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)

	// Room for the declaration and the root element only.
	w := &shortWriter{limit: len(`<?xml version="1.0" encoding="UTF-8"?>`) + 12}
	err := Write(w, "xml", testAccounts(), Options{Logger: zap.New(core)})

	require.Error(t, err)
	assert.Equal(t, 2, logs.FilterMessage("failed to write account row").Len())
}
