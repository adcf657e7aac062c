package schema

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"
)

// ServerID identifies a managed game server.
type ServerID string

// SessionID identifies one attach-to-detach console session.
type SessionID string

// NewSessionID mints an identifier for one attach-to-detach console session.
func NewSessionID() SessionID {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return SessionID(strconv.FormatInt(time.Now().UnixNano(), 16))
	}
	return SessionID(hex.EncodeToString(b[:]))
}

// GameType identifies a game template.
type GameType string

// ServerStatus is the lifecycle state reported by the process supervisor.
type ServerStatus string

const (
	// StatusStarting indicates the container is starting.
	StatusStarting ServerStatus = "starting"
	// StatusInstalling indicates an install script is running.
	StatusInstalling ServerStatus = "installing"
	// StatusRunning indicates the server process is running.
	StatusRunning ServerStatus = "running"
	// StatusStopping indicates a stop is in progress.
	StatusStopping ServerStatus = "stopping"
	// StatusStopped indicates the server process is not running.
	StatusStopped ServerStatus = "stopped"
	// StatusError indicates the container failed.
	StatusError ServerStatus = "error"
)

// IsTerminal reports whether the status ends a console session's run.
// Terminal transitions clear the log buffer and reset the device-code watcher.
func (s ServerStatus) IsTerminal() bool {
	return s == StatusStopped || s == StatusError
}
