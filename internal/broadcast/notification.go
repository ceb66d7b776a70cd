package broadcast

import "encoding/json"

// Resource names a record kind carried by a notification.
type Resource string

const (
	ResourceGuest   Resource = "guest"
	ResourceFinance Resource = "finance"
)

// Action names the mutation that produced a notification. The values double as
// the wire vocabulary of the websocket channel.
type Action string

const (
	ActionAdd    Action = "add"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Deleted is the payload broadcast for a delete: only the removed record's id.
type Deleted struct {
	ID string `json:"id"`
}

// Notification describes one completed mutation. It exists only for the
// duration of a fan-out and is never persisted.
type Notification struct {
	Resource Resource
	Action   Action
	// Record is the resulting record for add/update, or a Deleted for delete.
	Record any
}

// MarshalPayload serializes the notification into the wire envelope sent to
// listeners, keyed by resource so frontends can switch on the field name.
func (notification Notification) MarshalPayload() ([]byte, error) {
	envelope := map[string]any{
		"success":                     true,
		"action":                      notification.Action,
		"resource":                    notification.Resource,
		string(notification.Resource): notification.Record,
	}
	return json.Marshal(envelope)
}
