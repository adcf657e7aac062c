package console

import (
	"context"

	"github.com/serverwave/serverwave/schema"
)

// Supervisor is the process/container collaborator the engine consumes. The
// engine treats it as an opaque event source keyed by server id.
type Supervisor interface {
	// FetchRecentLines returns a one-shot historical tail, newest last.
	FetchRecentLines(ctx context.Context, serverID schema.ServerID, limit int) ([]string, error)
	// SubscribeLines delivers line events until cancel is called. Callers
	// filter by server id.
	SubscribeLines(ctx context.Context, serverID schema.ServerID) (<-chan schema.LineEvent, func(), error)
	// SubmitCommand writes one command to the process, fire-and-forget.
	SubmitCommand(ctx context.Context, serverID schema.ServerID, command string) error
	// Status reports the server's current lifecycle state.
	Status(ctx context.Context, serverID schema.ServerID) (schema.ServerStatus, error)
}
