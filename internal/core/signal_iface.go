package core

// Frame is one encoded envelope ready for the wire.
type Frame []byte

// SignalConnection is the send side of a client connection as the hub sees
// it. TrySend never blocks; a full buffer is reported as an error.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
