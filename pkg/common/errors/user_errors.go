// Package errors holds the error taxonomy shared by the gateway.
//
// Login failures are ValidationError values. They are always reported to the
// caller as a {code: 4000, msg} envelope and never retried. Everything else
// (store outages, signing failures) is an internal error.
//
//	if errors.Is(err, bizerr.ErrAccountLocked) { ... }
//
//	var ve *bizerr.ValidationError
//	if errors.As(err, &ve) { msg := ve.Msg }
package errors

import (
	"errors"
	"fmt"

	hzte "github.com/cloudwego/hertz/pkg/common/errors"
)

// Kind classifies a ValidationError. Two validation errors match under
// errors.Is when their kinds are equal, whatever their message.
type Kind int

const (
	KindInvalidParams Kind = iota + 1
	KindCaptchaRequired
	KindCaptchaExpired
	KindCaptchaIncorrect
	KindAccountNotFound
	KindAccountDuplicate
	KindAccountLocked
	KindBadCredentials
	KindFeatureDisabled
	KindTokenInvalid
)

// ValidationError is a caller-visible failure with a ready-to-render message.
type ValidationError struct {
	Kind Kind
	Msg  string
	// Remaining is set on KindBadCredentials when a lockout threshold applies.
	Remaining int
}

func (e *ValidationError) Error() string { return e.Msg }

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Kind == e.Kind
}

var (
	ErrInvalidParams    = &ValidationError{Kind: KindInvalidParams, Msg: "username and password are required"}
	ErrCaptchaRequired  = &ValidationError{Kind: KindCaptchaRequired, Msg: "captcha required"}
	ErrCaptchaExpired   = &ValidationError{Kind: KindCaptchaExpired, Msg: "captcha expired"}
	ErrCaptchaIncorrect = &ValidationError{Kind: KindCaptchaIncorrect, Msg: "captcha incorrect"}
	ErrAccountNotFound  = &ValidationError{Kind: KindAccountNotFound, Msg: "account does not exist"}
	ErrAccountDuplicate = &ValidationError{Kind: KindAccountDuplicate, Msg: "duplicate account, contact admin"}
	ErrAccountLocked    = &ValidationError{Kind: KindAccountLocked, Msg: "account locked, contact admin"}
	ErrBadCredentials   = &ValidationError{Kind: KindBadCredentials, Msg: "wrong credentials"}
	ErrFeatureDisabled  = &ValidationError{Kind: KindFeatureDisabled, Msg: "endpoint not enabled"}
	ErrTokenInvalid     = &ValidationError{Kind: KindTokenInvalid, Msg: "token invalid or expired"}
)

// NewAttemptsRemaining reports a wrong password with n attempts left before lockout.
func NewAttemptsRemaining(n int) *ValidationError {
	return &ValidationError{
		Kind:      KindBadCredentials,
		Msg:       fmt.Sprintf("wrong credentials; %d attempts remain", n),
		Remaining: n,
	}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Public wraps err as a hertz public error so it can be attached to the
// request context with c.Error and picked up by the access logger.
func Public(err error, meta interface{}) *hzte.Error {
	return hzte.New(err, hzte.ErrorTypePublic, meta)
}
