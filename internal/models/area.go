package models

// Area tiers. Tier 3 ("leaf") areas are the only ones selectable as a
// client's current location.
const (
	AreaTierCountry = 1
	AreaTierRegion  = 2
	AreaTierCity    = 3
)

// Area is a node in the geographic hierarchy.
type Area struct {
	BaseModel

	ParentID *string `gorm:"type:uuid;index" json:"parent_id"`
	Parent   *Area   `gorm:"foreignKey:ParentID" json:"-"`
	Tier     int     `gorm:"not null;index" json:"tier"`
	Name     string  `gorm:"type:varchar(255);not null" json:"name"`
}

// Selectable reports whether the area can be used as a client location.
func (a *Area) Selectable() bool {
	return a != nil && a.Tier == AreaTierCity
}
