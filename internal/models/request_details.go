package models

import "time"

// AccommodationDetails is the attribute sub-record for accommodation
// requests. One row per request, created in the same transaction.
type AccommodationDetails struct {
	BaseModel

	RequestID string     `gorm:"type:uuid;uniqueIndex;not null" json:"request_id"`
	CheckIn   *time.Time `json:"check_in"`
	CheckOut  *time.Time `json:"check_out"`
	Guests    int        `gorm:"default:1" json:"guests"`
	Rooms     int        `gorm:"default:1" json:"rooms"`
}

// TransportDetails is the attribute sub-record for transport requests.
type TransportDetails struct {
	BaseModel

	RequestID  string     `gorm:"type:uuid;uniqueIndex;not null" json:"request_id"`
	FromAreaID *string    `gorm:"type:uuid" json:"from_area_id"`
	ToAreaID   *string    `gorm:"type:uuid" json:"to_area_id"`
	DepartAt   *time.Time `json:"depart_at"`
	Seats      int        `gorm:"default:1" json:"seats"`
}

// EntertainmentDetails is the attribute sub-record for entertainment requests.
type EntertainmentDetails struct {
	BaseModel

	RequestID string     `gorm:"type:uuid;uniqueIndex;not null" json:"request_id"`
	EventDate *time.Time `json:"event_date"`
	PartySize int        `gorm:"default:1" json:"party_size"`
}
