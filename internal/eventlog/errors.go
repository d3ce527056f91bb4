package eventlog

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidStream   = errors.New("invalid log stream name")
	ErrStreamNotFound  = errors.New("log stream not found")
	ErrUnknownCategory = errors.New("unknown log category")
)

// StorageError reports a failed read or write of a stream's backing file.
type StorageError struct {
	Stream string
	Op     string
	Err    error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("log %s %s: %v", e.Op, e.Stream, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
