package transfer

// Event is a progress notification emitted by a running transfer.
// Events arrive over a channel so the producer never blocks on UI.
type Event struct {
	Kind     EventKind
	Name     string // file or item name, when known
	Percent  int    // 0-100, or -1 when the total size is unknown
	Received int64
	Total    int64
	Err      error
}

// EventKind identifies the type of a transfer event
type EventKind int

const (
	EventStart EventKind = iota
	EventProgress
	EventDone
	EventFinished
)

// eventMsg wraps an Event read from the channel
type eventMsg struct {
	event Event
	ok    bool
}
