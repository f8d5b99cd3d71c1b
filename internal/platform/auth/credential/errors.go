package credential

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed means the credential is not a three-segment token with
	// base64url-encoded JSON header and payload.
	ErrMalformed = errors.New("malformed credential")

	// ErrMissingClaim means the payload decoded but carries no usable role.
	ErrMissingClaim = errors.New("credential missing required claim")
)

// DecodeError is returned by Decode. Kind is ErrMalformed or ErrMissingClaim;
// both errors.Is(err, Kind) and errors.Is(err, Err) hold.
type DecodeError struct {
	Kind error
	// Claim names the offending claim for ErrMissingClaim.
	Claim string
	Err   error
}

func (e *DecodeError) Error() string {
	switch {
	case e.Claim != "" && e.Err != nil:
		return fmt.Sprintf("%v %q: %v", e.Kind, e.Claim, e.Err)
	case e.Claim != "":
		return fmt.Sprintf("%v %q", e.Kind, e.Claim)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	default:
		return e.Kind.Error()
	}
}

func (e *DecodeError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(err error) error {
	return &DecodeError{Kind: ErrMalformed, Err: err}
}

func missingClaim(claim string, err error) error {
	return &DecodeError{Kind: ErrMissingClaim, Claim: claim, Err: err}
}
