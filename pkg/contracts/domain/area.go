package domain

// Area represents a Dubai area with its map coordinates.
// The area name is stored lowercased and joins transactions on lower(area).
type Area struct {
	Name      string  `json:"area" db:"area" validate:"required"`
	Latitude  float64 `json:"latitude" db:"latitude" validate:"latitude"`
	Longitude float64 `json:"longitude" db:"longitude" validate:"longitude"`
}
