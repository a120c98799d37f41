package models

// Client represents a marketplace account. Every request is posted by a
// client, and provider profiles are owned by clients as well.
type Client struct {
	BaseModel

	Name  string `gorm:"type:varchar(255);not null" json:"name"`
	Email string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`

	// CurrentAreaID points at the client's selected location. Only tier-3
	// areas are accepted when the location is updated.
	CurrentAreaID *string `gorm:"type:uuid;index" json:"current_area_id"`
	CurrentArea   *Area   `gorm:"foreignKey:CurrentAreaID" json:"current_area,omitempty"`
}
