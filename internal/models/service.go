package models

// Service is a single offering of a provider, attached to one category.
// Only active services of active providers are eligible for matching.
type Service struct {
	BaseModel

	ProviderID string    `gorm:"type:uuid;not null;index" json:"provider_id"`
	Provider   *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`

	CategoryID string    `gorm:"type:uuid;not null;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Title       string  `gorm:"type:varchar(255);not null" json:"title"`
	Description string  `gorm:"type:text" json:"description"`
	PriceHint   float64 `gorm:"default:0" json:"price_hint"`
	Active      bool    `gorm:"not null;default:true;index" json:"active"`
}
