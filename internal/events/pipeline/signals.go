package pipeline

import "strings"

// Transport is the request metadata the HTTP (or Kafka) layer hands to the pipeline.
type Transport struct {
	RemoteAddr   string
	ForwardedFor string
	UserAgent    string
}

// RequestSignals are the server-derived attributes that improve match quality.
type RequestSignals struct {
	ClientIP  string
	UserAgent string
}

// ExtractSignals derives the origin address and user agent. The first
// X-Forwarded-For hop wins over the socket address, and a user agent declared in
// the payload wins over the header, since the payload one came from the browser.
func ExtractSignals(t Transport, payloadAgent string) RequestSignals {
	ip := t.RemoteAddr
	if t.ForwardedFor != "" {
		first, _, _ := strings.Cut(t.ForwardedFor, ",")
		ip = strings.TrimSpace(first)
	}

	agent := payloadAgent
	if agent == "" {
		agent = t.UserAgent
	}

	return RequestSignals{
		ClientIP:  ip,
		UserAgent: agent,
	}
}
