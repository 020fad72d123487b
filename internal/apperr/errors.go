// Package apperr defines the tagged error type shared by the processing
// pipeline. Each failure carries a Kind so the HTTP layer can map it to a
// status code without string matching.
package apperr

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindUnknown Kind = iota
	KindConfig
	KindUpstream
	KindParse
	KindRequest
	KindFilesystem
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindUpstream:
		return "upstream"
	case KindParse:
		return "parse"
	case KindRequest:
		return "request"
	case KindFilesystem:
		return "filesystem"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Op names the stage that failed
// ("transcribe", "analyze", ...). Status is the upstream HTTP status for
// KindUpstream errors, zero otherwise.
type Error struct {
	Kind   Kind
	Op     string
	Status int
	Msg    string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func Config(op, msg string) error {
	return &Error{Kind: KindConfig, Op: op, Msg: msg}
}

func Upstream(op string, status int, msg string, err error) error {
	return &Error{Kind: KindUpstream, Op: op, Status: status, Msg: msg, Err: err}
}

func Parse(op, msg string, err error) error {
	return &Error{Kind: KindParse, Op: op, Msg: msg, Err: err}
}

func Request(op, msg string, err error) error {
	return &Error{Kind: KindRequest, Op: op, Msg: msg, Err: err}
}

func Filesystem(op, msg string, err error) error {
	return &Error{Kind: KindFilesystem, Op: op, Msg: msg, Err: err}
}

// KindOf returns the Kind of the outermost *Error in the chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
