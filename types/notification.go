package types

// PushNotification is the payload handed to the notification dispatcher.
type PushNotification struct {
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Sound    string                 `json:"sound,omitempty"`
	Priority string                 `json:"priority,omitempty"`
	TTL      int                    `json:"ttl,omitempty"`
}
