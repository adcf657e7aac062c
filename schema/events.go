package schema

// LineEvent carries one output line from the process supervisor. Consumers
// filter by ServerID; a subscription may briefly deliver events for a server
// the consumer has already detached from.
type LineEvent struct {
	ServerID ServerID
	Line     string
}

// StatusEvent carries a server lifecycle transition.
type StatusEvent struct {
	ServerID ServerID
	Status   ServerStatus
}
