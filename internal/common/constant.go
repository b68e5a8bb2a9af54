// Package common contains shared constants, sentinel errors and small helpers
// used across the dktlearn client packages.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix precedes the access token inside AuthorizationHeader.
	BearerPrefix = "Bearer "

	// RequestIDHeader correlates a client log line with the backend request.
	RequestIDHeader = "X-Request-ID"
)
