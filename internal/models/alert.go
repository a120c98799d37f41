package models

// Alert links one request to one matching service of one provider. The
// composite unique index makes repeated matching runs harmless: a duplicate
// insert for the same tuple is rejected by the database and swallowed by
// the matching engine.
type Alert struct {
	BaseModel

	RequestID string   `gorm:"type:uuid;not null;uniqueIndex:idx_alerts_request_provider_service;index" json:"request_id"`
	Request   *Request `gorm:"foreignKey:RequestID" json:"request,omitempty"`

	ProviderID string    `gorm:"type:uuid;not null;uniqueIndex:idx_alerts_request_provider_service;index" json:"provider_id"`
	Provider   *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`

	ServiceID string   `gorm:"type:uuid;not null;uniqueIndex:idx_alerts_request_provider_service" json:"service_id"`
	Service   *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	IsRead bool `gorm:"not null;default:false;index" json:"is_read"`
	IsSeen bool `gorm:"not null;default:false" json:"is_seen"`
}
