package types

import (
	"errors"
	"fmt"
)

var ErrNoSecret = errors.New("no secret provided")

type KeySizeError struct {
	Value    int
	Min, Max int
}

func (e KeySizeError) Error() string {
	return fmt.Sprintf("invalid keysize %d: must be between %d and %d", e.Value, e.Min, e.Max)
}

type IterationsError struct {
	Value uint32
}

func (e IterationsError) Error() string {
	return fmt.Sprintf("invalid iterations %d: at least one iteration is required", e.Value)
}

type ResumeError struct {
	Reason string
}

func (e ResumeError) Error() string {
	return fmt.Sprintf("unable to resume: %s", e.Reason)
}

type SecretMismatchError struct{}

func (e SecretMismatchError) Error() string {
	return "secrets don't match"
}
