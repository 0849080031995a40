package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dreinsights/pkg/contracts/domain"
)

func exportRecords() []domain.Transaction {
	return []domain.Transaction{
		{
			TxNumber: "1-1", TxTime: time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC),
			TxDate: "2023-03-01", TxType: "Sales", Area: "Dubai Marina",
			PropType: "Unit", TxValue: 1500000, TxValueUSD: 408441.12,
			PriceSqm: 4084.4, Project: "Marina Heights",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportRecords()))

	out := buf.Bytes()
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, out[:3], "UTF-8 BOM")

	reader := csv.NewReader(bytes.NewReader(out[3:]))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "tx_number", rows[0][0])
	assert.Equal(t, "1-1", rows[1][0])
	assert.Equal(t, "2023-03-01", rows[1][1])
	// Values export with two decimal places.
	assert.Equal(t, "1500000.00", rows[1][10])
	assert.Equal(t, "4084.40", rows[1][12])
}

func TestWriteCSVEmptySlice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	content := strings.TrimPrefix(buf.String(), "\xef\xbb\xbf")
	lines := strings.Split(strings.TrimSpace(content), "\n")
	// Headers only.
	assert.Len(t, lines, 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, exportRecords()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Transactions")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "tx_number", rows[0][0])
	assert.Equal(t, "1-1", rows[1][0])
	assert.Equal(t, "Dubai Marina", rows[1][7])
}
