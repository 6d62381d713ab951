package irstore

import (
	"errors"
	"fmt"
	"io/fs"
)

// Errors returned by irstore.
var (
	ErrMissingFile     = errors.New("irstore: missing data")
	ErrIncompleteArray = errors.New("irstore: incomplete array")
	ErrInvalidConfig   = errors.New("irstore: invalid configuration")
	ErrInvalidDataset  = errors.New("irstore: invalid dataset file")
)

// MissingDataError reports one channel whose data could not be found or
// decoded. It matches [ErrMissingFile] with errors.Is.
type MissingDataError struct {
	Key     PairKey
	Channel int
	Path    string
	Err     error
}

func (e *MissingDataError) Error() string {
	switch {
	case e.Path == "":
		return fmt.Sprintf("irstore: %s channel %d: missing data", e.Key, e.Channel)
	case e.Err != nil && !errors.Is(e.Err, fs.ErrNotExist):
		return fmt.Sprintf("irstore: %s channel %d: unreadable %s: %v", e.Key, e.Channel, e.Path, e.Err)
	default:
		return fmt.Sprintf("irstore: %s channel %d: missing %s", e.Key, e.Channel, e.Path)
	}
}

func (e *MissingDataError) Is(target error) bool { return target == ErrMissingFile }

func (e *MissingDataError) Unwrap() error { return e.Err }

// IncompleteArrayError reports an array record with absent channels.
// It matches [ErrIncompleteArray] with errors.Is.
type IncompleteArrayError struct {
	Key     PairKey
	Missing []int
	Want    int
}

func (e *IncompleteArrayError) Error() string {
	return fmt.Sprintf("irstore: %s: %d of %d channels missing %v", e.Key, len(e.Missing), e.Want, e.Missing)
}

func (e *IncompleteArrayError) Is(target error) bool { return target == ErrIncompleteArray }
