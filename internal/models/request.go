package models

// Request statuses. Transitions are forward-only: an open request may be
// closed or cancelled, closed and cancelled requests never reopen.
const (
	RequestOpen            = "open"
	RequestClientClosed    = "client_closed"
	RequestClientCancelled = "client_cancelled"
	RequestSystemCancelled = "system_cancelled"
)

// Request is a client's posted need for a service ("bid"), scoped to an
// area and a category. Exactly one type-specific attribute sub-record is
// created together with the request.
type Request struct {
	BaseModel

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	AreaID string `gorm:"type:uuid;not null;index" json:"area_id"`
	Area   *Area  `gorm:"foreignKey:AreaID" json:"area,omitempty"`

	// CategoryID is nullable: some requests are category-less by design and
	// are simply never matched.
	CategoryID *string   `gorm:"type:uuid;index" json:"category_id"`
	Category   *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`

	Type    string  `gorm:"type:varchar(64);not null;index" json:"type"`
	Budget  float64 `gorm:"default:0" json:"budget"`
	Status  string  `gorm:"type:varchar(32);not null;default:'open';index" json:"status"`
	Comment string  `gorm:"type:text" json:"comment"`

	Accommodation *AccommodationDetails `gorm:"foreignKey:RequestID" json:"accommodation,omitempty"`
	Transport     *TransportDetails     `gorm:"foreignKey:RequestID" json:"transport,omitempty"`
	Entertainment *EntertainmentDetails `gorm:"foreignKey:RequestID" json:"entertainment,omitempty"`
}

// IsOpen reports whether the request still accepts proposals.
func (r *Request) IsOpen() bool {
	return r != nil && r.Status == RequestOpen
}

// CanTransitionTo enforces forward-only status transitions.
func (r *Request) CanTransitionTo(status string) bool {
	if r == nil || r.Status != RequestOpen {
		return false
	}
	switch status {
	case RequestClientClosed, RequestClientCancelled, RequestSystemCancelled:
		return true
	}
	return false
}
