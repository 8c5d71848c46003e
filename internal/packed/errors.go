package packed

import (
	"errors"
	"fmt"
)

// Stage identifies which step of the decode chain failed.
type Stage string

const (
	// StageBase64 covers strict base64 decoding of the transport string.
	StageBase64 Stage = "base64"
	// StageInflate covers zlib decompression of the decoded bytes.
	StageInflate Stage = "inflate"
	// StageUnpack covers msgpack deserialization of the inflated bytes.
	StageUnpack Stage = "unpack"
	// StageRebuild covers typed reconstruction from the unpacked structure.
	StageRebuild Stage = "rebuild"
)

// ErrUnknownClass is returned (wrapped in a DecodeError) when a payload
// carries a type tag that is not registered with the decoder.
var ErrUnknownClass = errors.New("unknown object class")

// DecodeError is the single failure category of the decoder. The Stage
// distinguishes corruption points for diagnostics; callers that do not care
// treat any DecodeError as "payload could not be decoded".
type DecodeError struct {
	Stage Stage
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode object payload: %s stage: %v", e.Stage, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func stageErr(s Stage, err error) error {
	return &DecodeError{Stage: s, Err: err}
}

func stageErrf(s Stage, format string, args ...any) error {
	return &DecodeError{Stage: s, Err: fmt.Errorf(format, args...)}
}
