package viz

// Status is the lifecycle of one metric: idle, then loading, then ready or
// failed.
type Status int

const (
	// StatusIdle means the metric was not attempted.
	StatusIdle Status = iota
	StatusLoading
	StatusReady
	StatusFailed
)

// String implements fmt.Stringer.
func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// State is the state of one metric.
type State[T any] struct {
	Status Status `json:"status"`
	// Err is a human-readable message when Status is StatusFailed.
	Err string `json:"error,omitempty"`
	// Skipped counts malformed lines and records without the field.
	Skipped int `json:"skipped,omitempty"`
	Data    T   `json:"data,omitempty"`
}

// Ready reports whether the metric loaded successfully.
func (s State[T]) Ready() bool { return s.Status == StatusReady }

// Loading reports whether the metric is in flight.
func (s State[T]) Loading() bool { return s.Status == StatusLoading }

func loading[T any]() State[T] {
	return State[T]{Status: StatusLoading}
}

func ready[T any](data T, skipped int) State[T] {
	return State[T]{Status: StatusReady, Data: data, Skipped: skipped}
}

func failed[T any](err error, skipped int) State[T] {
	return State[T]{Status: StatusFailed, Err: err.Error(), Skipped: skipped}
}
