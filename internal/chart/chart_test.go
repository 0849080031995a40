package chart

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dreinsights/pkg/contracts/domain"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderCategoryBars(t *testing.T) {
	counts := []domain.CategoryCount{
		{Category: "Ready", Count: 10},
		{Category: "Off-Plan", Count: 4},
		{Category: "", Count: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderCategoryBars(&buf, "Registration Type", counts))
	assert.Equal(t, pngMagic, buf.Bytes()[:4])
}

func TestRenderCategoryBarsEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCategoryBars(&buf, "Registration Type", nil)
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestRenderDailyMedian(t *testing.T) {
	series := []domain.DailyMedian{
		{TxDate: "2023-03-01", PriceSqm: 4000},
		{TxDate: "2023-03-02", PriceSqm: 4100},
		{TxDate: "2023-03-03", PriceSqm: 3950},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDailyMedian(&buf, "Median Price", series))
	assert.Equal(t, pngMagic, buf.Bytes()[:4])
}

func TestRenderDailyCounts(t *testing.T) {
	buckets := []domain.TypeCount{
		{PropType: "Unit", TxDate: "2023-03-01", Count: 3},
		{PropType: "Villa", TxDate: "2023-03-01", Count: 1},
		{PropType: "Unit", TxDate: "2023-03-02", Count: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderDailyCounts(&buf, "Transactions", buckets))
	assert.Equal(t, pngMagic, buf.Bytes()[:4])
}
