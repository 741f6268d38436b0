package gateway

// Messenger defines the interface for user-facing surfaces (terminal, Telegram, etc.)
type Messenger interface {
	// Start begins the input loop and blocks until it ends
	Start() error
	// Send sends a message to a specific session
	Send(sessionID string, text string) error
	// Stop gracefully shuts down the gateway
	Stop() error
}
