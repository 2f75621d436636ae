package domain

import "errors"

// Sentinel errors used throughout the application.
// Channel and repository implementations return these so the orchestrator
// can classify a fault into the right ChannelOutcome kind; HTTP handlers
// translate them to status codes via a single mapError function.
var (
	ErrOrderNotFound = errors.New("order not found")
	ErrNoContactInfo = errors.New("client has no contact information for this channel")
	ErrNotReady      = errors.New("channel is not ready")
	ErrQueueFull     = errors.New("dispatch queue is at capacity, try again later")
	ErrInvalidState  = errors.New("state labels must not be empty")
)
