package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ClientAPIKey returns the key holding the generation API key cached for a browser client
func (r *CacheKeyStruct) ClientAPIKey(clientID string) string {
	return fmt.Sprintf("client:%s:api_key", clientID)
}

// SessionDialogChannel returns the Redis PubSub channel carrying terminal generation errors of a session
func (r *CacheKeyStruct) SessionDialogChannel(sessionID string) string {
	return fmt.Sprintf("session:%s:dialogs", sessionID)
}

var CacheKey = NewCacheKeyStruct()
