package model

const (
	SnapshotEvent = "SNAPSHOT" // Full list, sent once when a feed client connects
	AddedEvent    = "ADDED"    // Payload is the created activity
	DeletedEvent  = "DELETED"  // Payload is {"id": k}; ids above k shift down by one
)

// ActivityEvent describes a change to the store for change-feed subscribers.
type ActivityEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type DeletedPayload struct {
	ID int `json:"id"`
}
