//nolint:revive // types is a common Go package naming convention
package types

// EventType names the kind of a decoded stream event.
type EventType string

// Event types understood by the accumulator. Any other type is ignored.
const (
	EventTypeToken EventType = "youChatToken"
	EventTypeDone  EventType = "done"
)

// IsTerminal returns true if this event type ends accumulation.
func (e EventType) IsTerminal() bool {
	return e == EventTypeDone
}

// Event is one blank-line-delimited block of the response body.
// A block only becomes an Event when it carries an "event:" line.
type Event struct {
	// Type is the trimmed value of the block's "event:" line.
	Type EventType
	// Payload is the trimmed value of the last "data:" line, if any.
	Payload string
	// HasPayload distinguishes an absent "data:" line from an empty one.
	HasPayload bool
}

// TokenPayload is the JSON body of a youChatToken event.
// Fields other than the token are ignored.
type TokenPayload struct {
	YouChatToken *string `json:"youChatToken"`
}
