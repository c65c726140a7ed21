package model

// APIKeyStatus reports whether a client has a cached generation key.
// The key itself is only returned to the client that owns it.
type APIKeyStatus struct {
	ClientID string `json:"client_id"`
	APIKey   string `json:"api_key"`
	Present  bool   `json:"present"`
}

// SaveAPIKeyRequest stores a generation API key for a client.
type SaveAPIKeyRequest struct {
	APIKey string `json:"api_key" binding:"required,notblank,max=512"`
}
