package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawEvent is the client-submitted event, as received. It is never modified after decoding.
type RawEvent struct {
	EventName      string     `json:"event_name" validate:"required"`
	EventTime      int64      `json:"event_time"` // any integer, including zero or negative
	EventSourceURL string     `json:"event_source_url,omitempty"`
	ActionSource   string     `json:"action_source"`
	UserData       UserData   `json:"user_data"`
	CustomData     CustomData `json:"custom_data"`
	TestEventCode  string     `json:"test_event_code,omitempty"`
}

// UserData holds the identity and browser attributes a client may send.
// Identity fields are raw PII and must only leave the service hashed.
type UserData struct {
	Email      string `json:"email,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Country    string `json:"country,omitempty"`
	City       string `json:"city,omitempty"`
	Zip        string `json:"zip,omitempty"`
	ExternalID string `json:"external_id,omitempty"`

	UserAgent string `json:"user_agent,omitempty"`
	FBP       string `json:"fbp,omitempty"`
	FBC       string `json:"fbc,omitempty"`
}

// UnmarshalJSON accepts any scalar for a known key (zip codes and external ids often
// arrive as numbers) and ignores keys it does not know.
func (u *UserData) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*u = UserData{}
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("user_data: %w", err)
	}

	*u = UserData{
		Email:      scalarString(raw["email"]),
		FirstName:  scalarString(raw["first_name"]),
		LastName:   scalarString(raw["last_name"]),
		Phone:      scalarString(raw["phone"]),
		Country:    scalarString(raw["country"]),
		City:       scalarString(raw["city"]),
		Zip:        scalarString(raw["zip"]),
		ExternalID: scalarString(raw["external_id"]),
		UserAgent:  scalarString(raw["user_agent"]),
		FBP:        scalarString(raw["fbp"]),
		FBC:        scalarString(raw["fbc"]),
	}
	return nil
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return ""
	}
}
