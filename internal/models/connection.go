package models

import "time"

// ConnectionStatus defines the state of a connection between two users.
type ConnectionStatus string

const (
	// StatusPending means a connection request has been sent but not yet
	// answered by the receiver.
	StatusPending ConnectionStatus = "pending"

	// StatusAccepted means the receiver accepted and the users are connected.
	StatusAccepted ConnectionStatus = "accepted"

	// StatusDeclined means the receiver declined. Declined records are
	// terminal and keep blocking new requests for the pair.
	StatusDeclined ConnectionStatus = "declined"
)

// Connection represents the relationship between two users. At most one row
// exists per unordered pair; RequesterID records who initiated.
type Connection struct {
	ID          string           `gorm:"size:36;primaryKey"`
	RequesterID uint             `gorm:"not null;index"`
	ReceiverID  uint             `gorm:"not null;index"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Requester Profile `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Receiver  Profile `gorm:"foreignKey:ReceiverID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Other returns the endpoint that is not userID. Callers use it to normalize
// listings to "the other party" regardless of original direction.
func (c *Connection) Other(userID uint) uint {
	if c.RequesterID == userID {
		return c.ReceiverID
	}
	return c.RequesterID
}

// OtherProfile returns the preloaded profile of the endpoint that is not
// userID.
func (c *Connection) OtherProfile(userID uint) *Profile {
	if c.RequesterID == userID {
		return &c.Receiver
	}
	return &c.Requester
}
