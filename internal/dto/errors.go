package dto

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("errRecordNotFound")
	ErrAlreadyExists = errors.New("errAlreadyExists")
)

// DuplicateKeyError reports which unique key collided.
type DuplicateKeyError struct {
	Key   UniqueKey
	Value string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate %s %q", e.Key, e.Value)
}

func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrAlreadyExists
}
