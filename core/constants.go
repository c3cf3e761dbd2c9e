package core

// connState is the position of a connection in its request cycle
type connState int

// Connection states
const (
	StateReading connState = iota
	StateDecoding
	StateHandling
	StateEncoding
	StateWriting
	StateClosed
)

func (s connState) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDecoding:
		return "decoding"
	case StateHandling:
		return "handling"
	case StateEncoding:
		return "encoding"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
