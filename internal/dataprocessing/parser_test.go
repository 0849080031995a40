package dataprocessing

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const currentDialectCSV = `TRANSACTION_NUMBER,INSTANCE_DATE,GROUP_EN,PROCEDURE_EN,IS_OFFPLAN_EN,IS_FREE_HOLD_EN,USAGE_EN,AREA_EN,PROP_TYPE_EN,PROP_SB_TYPE_EN,TRANS_VALUE,PROCEDURE_AREA,ACTUAL_AREA,ROOMS_EN,PARKING,NEAREST_METRO_EN,NEAREST_MALL_EN,NEAREST_LANDMARK_EN,TOTAL_BUYER,TOTAL_SELLER,MASTER_PROJECT_EN,PROJECT_EN
1-1-2023,2023-03-01 00:00:00,Sales,Sell,Ready,Free Hold,Residential,Dubai Marina,Unit,Flat,"1,500,000",80.5,100.2,1 B/R,Y,DAMAC Properties,Marina Mall,Burj Al Arab,1,1,Dubai Marina,Marina Heights
1-2-2023,2023-03-02 00:00:00,Mortgages,Mortgage Registration,Off-Plan,Free Hold,Residential,Business Bay,Unit,Flat,2000000,160,200,2 B/R,Y,Business Bay,Dubai Mall,Burj Khalifa,2,1,Business Bay,Bay Tower
`

const historicalDialectCSV = `transaction_number,transaction_date,transaction_date_year,property_id,transaction_type,transaction_subtype,registration_type,is_free_hold,usage,area,property_type,property_subtype,amount,transaction_size_sq_m,property_size_sq_m,rooms,parking,nearest_metro,nearest_mall,nearest_landmark,number_of_buyers,number_of_sellers,master_project,project
2-1-2010,2010-06-15,2010,12345,Sales,Sell,Ready,Free Hold,Residential,Jumeirah,Villa,Villa,5000000,400,500,4 B/R,Y,,,Burj Al Arab,1.0,2.0,Jumeirah,Palm Villas
`

func TestParseTransactionsCurrentDialect(t *testing.T) {
	records, err := ParseTransactions(strings.NewReader(currentDialectCSV))
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "1-1-2023", first.TxNumber)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), first.TxTime)
	assert.Equal(t, "Sales", first.TxType)
	assert.Equal(t, "Ready", first.RegType)
	assert.Equal(t, "Dubai Marina", first.Area)
	assert.Equal(t, "Unit", first.PropType)
	assert.InDelta(t, 1500000, first.TxValue, 1e-9)
	assert.InDelta(t, 80.5, first.TxSizeSqm, 1e-9)
	assert.InDelta(t, 100.2, first.PropSizeSqm, 1e-9)
	assert.Equal(t, int64(1), first.BuyerCount)
	assert.Equal(t, "Marina Heights", first.Project)
}

func TestParseTransactionsHistoricalDialect(t *testing.T) {
	records, err := ParseTransactions(strings.NewReader(historicalDialectCSV))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "2-1-2010", rec.TxNumber)
	assert.Equal(t, time.Date(2010, 6, 15, 0, 0, 0, 0, time.UTC), rec.TxTime)
	assert.Equal(t, "Jumeirah", rec.Area)
	assert.Equal(t, "Villa", rec.PropType)
	assert.InDelta(t, 5000000, rec.TxValue, 1e-9)
	// Historical exports carry counts as floats.
	assert.Equal(t, int64(1), rec.BuyerCount)
	assert.Equal(t, int64(2), rec.SellerCount)
}

func TestParseTransactionsSkipsMalformedRows(t *testing.T) {
	data := currentDialectCSV +
		"1-3-2023,not-a-date,Sales,Sell,Ready,Free Hold,Residential,Jumeirah,Unit,Flat,100,1,1,,,,,,1,1,,\n"

	records, err := ParseTransactions(strings.NewReader(data))
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestParseTransactionsRejectsUnknownHeader(t *testing.T) {
	data := "foo,bar,baz\n1,2,3\n"
	_, err := ParseTransactions(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestParseTransactionsFileMissing(t *testing.T) {
	_, err := ParseTransactionsFile("testdata/does-not-exist.csv")
	require.Error(t, err)
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2023-03-01 14:30:00", time.Date(2023, 3, 1, 14, 30, 0, 0, time.UTC)},
		{"2023-03-01", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"01-03-2023", time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, got)
	}

	_, err := parseTimestamp("")
	assert.Error(t, err)
}

func TestParseFloatSeparators(t *testing.T) {
	assert.InDelta(t, 1500000, parseFloat("1,500,000"), 1e-9)
	assert.InDelta(t, 80.5, parseFloat("80.5"), 1e-9)
	assert.Equal(t, float64(0), parseFloat(""))
	assert.Equal(t, float64(0), parseFloat("n/a"))
}

func TestParseAreas(t *testing.T) {
	data := "area,latitude,longitude\nDubai Marina,25.07,55.14\nbusiness bay,25.19,55.27\n"
	areas, err := ParseAreas(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, areas, 2)

	// Names are lowercased for the case-insensitive join.
	assert.Equal(t, "dubai marina", areas[0].Name)
	assert.InDelta(t, 25.07, areas[0].Latitude, 1e-9)
	assert.Equal(t, "business bay", areas[1].Name)
}

func TestParseAreasNoHeader(t *testing.T) {
	data := "Dubai Marina,25.07,55.14\n"
	areas, err := ParseAreas(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, areas, 1)
	assert.Equal(t, "dubai marina", areas[0].Name)
}

func TestParseAreasBadCoordinates(t *testing.T) {
	data := "area,latitude,longitude\nDubai Marina,x,y\n"
	_, err := ParseAreas(strings.NewReader(data))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid coordinates")
}

func TestParseRentals(t *testing.T) {
	data := "CONTRACT_NUMBER,CONTRACT_START_DATE,AREA_EN,PROP_TYPE_EN,ANNUAL_AMOUNT\nR-1,2023-03-01,Dubai Marina,Unit,\"120,000\"\n"
	rentals, err := ParseRentals(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, rentals, 1)

	assert.Equal(t, "R-1", rentals[0].ContractNumber)
	assert.Equal(t, time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC), rentals[0].StartDate)
	assert.InDelta(t, 120000, rentals[0].AnnualRent, 1e-9)
}
