// Package notify delivers alert push notifications over NATS JetStream.
package notify

// Payload is the push message handed to the transport. Data values are
// strings because mobile push data maps do not carry typed values.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}
