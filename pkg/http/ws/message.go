package ws

// Message types pushed to subscribers.
const (
	TypeSessionStatus = "session_status"
)

// Message is the envelope for all pushed payloads.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}
