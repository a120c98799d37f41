package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification types produced by the dispatcher.
const (
	NotificationRequestMatched   = "request.matched"
	NotificationProposalReceived = "proposal.received"
)

// Notification is a persisted in-app notification addressed to a client
// account. It is the durable output of the notification dispatcher; there
// is no push transport.
type Notification struct {
	BaseModel

	ClientID string         `gorm:"type:uuid;not null;index" json:"client_id"`
	Type     string         `gorm:"type:varchar(64);not null" json:"type"`
	Title    string         `gorm:"type:varchar(255);not null" json:"title"`
	Message  string         `gorm:"type:text" json:"message"`
	Metadata datatypes.JSON `json:"metadata"`

	IsRead bool       `gorm:"not null;default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at"`
}
