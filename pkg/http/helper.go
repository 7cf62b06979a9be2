package http

import (
	"net"
	"net/http"
	"strings"

	apperrors "capirelay/pkg/errors"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderUserAgent    = "User-Agent"
)

// RemoteHost returns the socket peer address without its port. Addresses that
// carry no port are returned unchanged.
func RemoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RequiredHeader returns the trimmed value of name, or an InvalidInput error when
// it is missing or blank.
func RequiredHeader(r *http.Request, name string) (string, error) {
	value := strings.TrimSpace(r.Header.Get(name))
	if value == "" {
		return "", apperrors.InvalidInput("missing required header: " + name)
	}
	return value, nil
}
