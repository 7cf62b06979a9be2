package model

// HashedIdentity maps each provider key to the SHA-256 digest of the matching
// identity attribute. A field is empty when its source attribute was absent.
// Only digests are ever stored here.
type HashedIdentity struct {
	Em         string `json:"em,omitempty"`
	Fn         string `json:"fn,omitempty"`
	Ln         string `json:"ln,omitempty"`
	Ph         string `json:"ph,omitempty"`
	Country    string `json:"country,omitempty"`
	Ct         string `json:"ct,omitempty"`
	Zp         string `json:"zp,omitempty"`
	ExternalID string `json:"external_id,omitempty"`
}

// Present lists the provider keys that carry a digest, in wire order.
func (h HashedIdentity) Present() []string {
	var keys []string
	for _, f := range []struct {
		key   string
		value string
	}{
		{"em", h.Em},
		{"fn", h.Fn},
		{"ln", h.Ln},
		{"ph", h.Ph},
		{"country", h.Country},
		{"ct", h.Ct},
		{"zp", h.Zp},
		{"external_id", h.ExternalID},
	} {
		if f.value != "" {
			keys = append(keys, f.key)
		}
	}
	return keys
}

type OutboundUserData struct {
	ClientIPAddress string `json:"client_ip_address,omitempty"`
	ClientUserAgent string `json:"client_user_agent,omitempty"`
	FBC             string `json:"fbc,omitempty"`
	FBP             string `json:"fbp,omitempty"`
	HashedIdentity
}

type ServerEvent struct {
	EventName      string           `json:"event_name"`
	EventTime      int64            `json:"event_time"`
	ActionSource   string           `json:"action_source"`
	EventSourceURL string           `json:"event_source_url,omitempty"`
	UserData       OutboundUserData `json:"user_data"`
	CustomData     CustomData       `json:"custom_data"`
}

// OutboundDocument is the request body accepted by the ingestion endpoint.
type OutboundDocument struct {
	Data          []ServerEvent `json:"data"`
	TestEventCode string        `json:"test_event_code,omitempty"`
}
