package server

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// contextKey is the private type for request-scoped values set by the
// middleware chain.
type contextKey string

const contextKeyRequestID contextKey = "requestID"

// Config holds server configuration
type Config struct {
	// Server configuration
	Address string
	Port    int

	// Rate limiting configuration
	RateLimit      rate.Limit // requests per second
	RateLimitBurst int        // burst size

	// Timeouts
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Logging
	LogLevel string
}

// RequestID returns the request id assigned by the middleware chain, or "".
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(contextKeyRequestID).(string)
	return id
}
