package types

// WSMessage represents a WebSocket message from a console client.
type WSMessage struct {
	Type     string `json:"type"`
	ModuleID string `json:"module_id,omitempty"`
}

// SetFlagRequest represents a visibility flag write.
type SetFlagRequest struct {
	Value *bool `json:"value" binding:"required"`
}
