package redis

import (
	"fmt"

	"github.com/mcoot/minesweeper-go/internal/model"
)

// Key prefix for all minesweeper data
const keyPrefix = "msweep"

// sessionKey returns the Redis key for a Session
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of all session IDs
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// summariesKey returns the Redis key for the LIST of summaries for a session
func summariesKey(id model.SessionID) string {
	return fmt.Sprintf("%s:summaries:%s", keyPrefix, id)
}
