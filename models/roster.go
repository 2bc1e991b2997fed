package models

// Constructor is a real-world racing team fielding two drivers in a season.
// HomeCountry powers the home-race achievement coupling.
type Constructor struct {
	ID          string `json:"id" gorm:"primaryKey"`
	SeasonID    string `json:"season_id" gorm:"not null;index"`
	Name        string `json:"name" gorm:"not null"`
	Color       string `json:"color" gorm:"default:'#000000'"`
	HomeCountry string `json:"home_country"`

	Drivers []Driver `json:"drivers,omitempty" gorm:"foreignKey:ConstructorID"`
}

// Driver is one competitor, identified in positions/outcomes by its short code.
type Driver struct {
	ID            string `json:"id" gorm:"primaryKey"`
	ConstructorID string `json:"constructor_id" gorm:"not null;index"`
	Code          string `json:"code" gorm:"not null;index"` // e.g. "ALO"
	Name          string `json:"name" gorm:"not null"`

	Constructor Constructor `json:"constructor,omitempty" gorm:"foreignKey:ConstructorID"`
}
