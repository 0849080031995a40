package domain

import (
	"time"
)

// AEDToUSD is the fixed AED/USD peg used to convert transaction values.
const AEDToUSD = 3.6725

// Transaction represents a single Dubailand property transaction record.
type Transaction struct {
	TxNumber      string    `json:"tx_number" db:"tx_number" validate:"required"`
	TxTime        time.Time `json:"tx_ts" db:"tx_ts"`
	TxType        string    `json:"tx_type" db:"tx_type"`
	TxSubtype     string    `json:"tx_subtype" db:"tx_subtype"`
	RegType       string    `json:"reg_type" db:"reg_type"`
	IsFreeHold    string    `json:"is_free_hold" db:"is_free_hold"`
	Usage         string    `json:"usage" db:"usage"`
	Area          string    `json:"area" db:"area"`
	PropType      string    `json:"prop_type" db:"prop_type"`
	PropSubtype   string    `json:"prop_subtype" db:"prop_subtype"`
	TxValue       float64   `json:"tx_value" db:"tx_value" validate:"min=0"`
	TxSizeSqm     float64   `json:"tx_size_sqm" db:"tx_size_sqm"`
	PropSizeSqm   float64   `json:"prop_size_sqm" db:"prop_size_sqm"`
	Rooms         string    `json:"rooms" db:"rooms"`
	Parking       string    `json:"parking" db:"parking"`
	NearMetro     string    `json:"near_metro" db:"near_metro"`
	NearMall      string    `json:"near_mall" db:"near_mall"`
	NearLandmark  string    `json:"near_landmark" db:"near_landmark"`
	BuyerCount    int64     `json:"buy_count" db:"buy_count"`
	SellerCount   int64     `json:"sell_count" db:"sell_count"`
	MasterProject string    `json:"master_project" db:"master_project"`
	Project       string    `json:"project" db:"project"`

	// Area join fields, attached when the area is known.
	AreaNorm  string   `json:"area_norm,omitempty" db:"area_norm"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`

	// Derived fields, computed on read (not persisted).
	TxDate     string  `json:"tx_date"`
	WeekNumber int     `json:"week_number"`
	TxValueUSD float64 `json:"tx_value_usd"`
	PriceSqm   float64 `json:"price_sqm"`
}

// HasCoordinates reports whether the transaction carries map coordinates.
func (t *Transaction) HasCoordinates() bool {
	return t.Latitude != nil && t.Longitude != nil
}

// PropTypeLand is excluded from top-transaction listings.
const PropTypeLand = "Land"

// RentalContract represents one row of the rental open-data set.
type RentalContract struct {
	ContractNumber string    `json:"contract_number" db:"contract_number"`
	StartDate      time.Time `json:"start_date" db:"start_date"`
	Area           string    `json:"area" db:"area"`
	PropType       string    `json:"prop_type" db:"prop_type"`
	AnnualRent     float64   `json:"annual_rent" db:"annual_rent"`
}
