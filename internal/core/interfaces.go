package core

// Frame is one raw signaling payload (a JSON message on the wire).
type Frame []byte

// SessionID identifies one live transport connection, not a peer.
// A connection gets its id when it is accepted and keeps it until close.
type SessionID string

// SignalConnection abstracts the system messaging transport.
// Owned by the adapter; the adapter must Close() it. TrySend never
// blocks: a full outbound buffer is reported as an error so a stuck
// recipient cannot stall the dispatcher.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the dispatcher.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}
