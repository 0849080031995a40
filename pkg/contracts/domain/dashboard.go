package domain

// MetricCard is a single headline figure with its delta against the
// preceding period of equal length.
type MetricCard struct {
	Label         string  `json:"label"`
	Value         float64 `json:"value"`
	Previous      float64 `json:"previous"`
	ChangePercent float64 `json:"change_percent"`
}

// DashboardMetrics bundles the five headline cards.
type DashboardMetrics struct {
	TxCount          MetricCard `json:"tx_count"`
	TotalValueUSD    MetricCard `json:"total_value_usd"`
	MedianPriceSqm   MetricCard `json:"median_price_sqm"`
	MedianRentalUSD  MetricCard `json:"median_rental_usd"`
	LargestTxUSD     MetricCard `json:"largest_tx_usd"`
}

// TypeCount is one (property type, day) bucket of the by-type chart.
type TypeCount struct {
	PropType string `json:"prop_type"`
	TxDate   string `json:"tx_date"`
	Count    int    `json:"count"`
}

// CategoryCount is a generic single-dimension bucket (rooms, registration
// type, payment type).
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// DailyMedian is the median price per sqm for one trading day.
type DailyMedian struct {
	TxDate   string  `json:"tx_date"`
	PriceSqm float64 `json:"price_sqm"`
}

// TopTransaction is one row of the top-transactions table.
type TopTransaction struct {
	Rank        int     `json:"rank"`
	Project     string  `json:"project"`
	Area        string  `json:"area"`
	TxValueUSD  float64 `json:"tx_value_usd"`
	TxSizeSqm   float64 `json:"tx_size_sqm"`
	PropSubtype string  `json:"prop_subtype"`
}

// TopProject is one row of the top-projects table.
type TopProject struct {
	Rank          int     `json:"rank"`
	Project       string  `json:"project"`
	UnitsSold     int     `json:"units_sold"`
	TotalValueUSD float64 `json:"total_value_usd"`
}

// MapColumn is one aggregated map column keyed by coordinates.
// Value carries the raw aggregate; Normalized is min-max scaled to [0,1].
type MapColumn struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Value      float64 `json:"value"`
	Normalized float64 `json:"normalized"`
}
