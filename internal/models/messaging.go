package models

// StatusType represents the delivery status of an outbound message.
type StatusType string

const (
	// StatusTypeSent indicates the message was handed to the transport.
	StatusTypeSent StatusType = "sent"
	// StatusTypeDelivered indicates the transport confirmed delivery.
	StatusTypeDelivered StatusType = "delivered"
	// StatusTypeRead indicates the recipient read the message.
	StatusTypeRead StatusType = "read"
)

// Receipt is a delivery status event for an outbound message.
type Receipt struct {
	To     string     `json:"to"`
	Status StatusType `json:"status"`
	Time   int64      `json:"time"`
}

// Response is an incoming message from a conversation participant.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}
