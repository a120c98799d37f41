package models

// Proposal statuses.
const (
	ProposalSubmitted = "submitted"
	ProposalWithdrawn = "withdrawn"
	ProposalAccepted  = "accepted"
	ProposalDeclined  = "declined"
)

// Proposal is a provider's priced response to a request, referencing one of
// the provider's own services. A multi-service answer is stored as one row
// per service, all sharing the request, price and comment.
type Proposal struct {
	BaseModel

	RequestID string   `gorm:"type:uuid;not null;index" json:"request_id"`
	Request   *Request `gorm:"foreignKey:RequestID" json:"request,omitempty"`

	ProviderID string    `gorm:"type:uuid;not null;index" json:"provider_id"`
	Provider   *Provider `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`

	ServiceID string   `gorm:"type:uuid;not null;index" json:"service_id"`
	Service   *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`

	Price   *float64 `json:"price"`
	Comment *string  `gorm:"type:text" json:"comment"`
	Status  string   `gorm:"type:varchar(32);not null;default:'submitted';index" json:"status"`
}
