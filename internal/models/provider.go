package models

// Provider lifecycle statuses. Only active providers participate in
// matching and proposal creation.
const (
	ProviderActive    = "active"
	ProviderSuspended = "suspended"
	ProviderClosed    = "closed"
)

// Provider is a service-selling profile owned by a client. A client may
// have at most one active provider at a time; the rule is enforced by
// ProviderService on activation, not by a database constraint.
type Provider struct {
	BaseModel

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	Name   string `gorm:"type:varchar(255);not null" json:"name"`
	Status string `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
}

// IsActive reports whether the provider participates in matching.
func (p *Provider) IsActive() bool {
	return p != nil && p.Status == ProviderActive
}
