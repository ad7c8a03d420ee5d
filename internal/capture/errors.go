package capture

import "fmt"

// SinkError wraps a failed persistence call.
type SinkError struct {
	ItemID string
	Err    error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("save item %s: %v", e.ItemID, e.Err)
}

func (e *SinkError) Unwrap() error { return e.Err }

// ItemError reports a buffer that could not be turned into an item. The sink is
// never called.
type ItemError struct {
	Err error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("build item: %v", e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("sink panicked: %v", e.value)
}
