// Package apperr classifies portal failures and turns them into short,
// localized messages. Backend errors are translated here and never reach the
// user as raw payloads unless nothing better is known.
package apperr

import (
	"context"
	"errors"
	"net/http"

	"golang.org/x/text/message"

	"github.com/voluntariado/portal/internal/backend"
	"github.com/voluntariado/portal/internal/i18n"
)

// Kind classifies failures for consistent HTTP mapping and messages.
type Kind string

const (
	KindUnknown        Kind = "unknown"
	KindAuth           Kind = "auth"
	KindSessionExpired Kind = "session_expired"
	KindNoSession      Kind = "no_session"
	KindForbidden      Kind = "forbidden"
	KindInvalidRequest Kind = "invalid_request"
	KindConflict       Kind = "conflict"
	KindNotFound       Kind = "not_found"
	KindUnavailable    Kind = "unavailable"
)

// Operations with their own wording.
const (
	OpRegister   = "register"
	OpUnregister = "unregister"
)

// Error is a classified failure.
type Error struct {
	Kind Kind
	// Op names the operation when its messages differ from the generic ones.
	Op string
	// Key is an i18n message key overriding the kind's default message.
	Key string
	// Detail is the backend's own text, used only when nothing better is known.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	case e.Detail != "":
		return string(e.Kind) + ": " + e.Detail
	case e.Key != "":
		return string(e.Kind) + ": " + e.Key
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// E builds an Error with a message key.
func E(kind Kind, key string) error {
	return &Error{Kind: kind, Key: key}
}

// FromStatus maps an HTTP status to a Kind.
func FromStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindInvalidRequest
	case http.StatusUnauthorized:
		return KindAuth
	case http.StatusForbidden:
		return KindForbidden
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindUnavailable
	}
	return KindUnknown
}

// enrollmentKind narrows k for register and unregister, which name only
// invalid_request, forbidden, not_found and conflict; any other backend
// outcome is unknown to them. Session expiry stays global.
func enrollmentKind(op string, k Kind) Kind {
	if op != OpRegister && op != OpUnregister {
		return k
	}
	switch k {
	case KindInvalidRequest, KindForbidden, KindNotFound, KindConflict, KindSessionExpired, KindNoSession:
		return k
	}
	return KindUnknown
}

// Wrap classifies err, typically returned by the backend client, for op.
// Already-classified errors pass through with op filled in when missing.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Op == "" && op != "" {
			cp := *appErr
			cp.Op = op
			return &cp
		}
		return err
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		kind := FromStatus(statusErr.Status)
		if kind == KindAuth && statusErr.Authenticated {
			kind = KindSessionExpired
		}
		return &Error{Kind: enrollmentKind(op, kind), Op: op, Detail: statusErr.Message, Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	return &Error{Kind: enrollmentKind(op, KindUnavailable), Op: op, Err: err}
}

// KindOf returns the Kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	var statusErr *backend.StatusError
	if errors.As(err, &statusErr) {
		return FromStatus(statusErr.Status)
	}
	return KindUnknown
}

// HTTPStatus maps an error to the status the portal answers with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case KindAuth, KindSessionExpired, KindNoSession:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindInvalidRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Message renders the user-facing text for err.
func Message(p *message.Printer, err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if !errors.As(err, &appErr) {
		return p.Sprintf(i18n.MsgUnknown)
	}
	if appErr.Key != "" {
		return p.Sprintf(appErr.Key)
	}
	switch appErr.Kind {
	case KindNotFound:
		return p.Sprintf(i18n.MsgNotFound)
	case KindForbidden:
		return p.Sprintf(i18n.MsgForbidden)
	case KindInvalidRequest:
		return p.Sprintf(i18n.MsgInvalidRequest)
	case KindConflict:
		switch appErr.Op {
		case OpRegister:
			return p.Sprintf(i18n.MsgRegisterConflict)
		case OpUnregister:
			return p.Sprintf(i18n.MsgUnregConflict)
		}
		return p.Sprintf(i18n.MsgConflict)
	case KindAuth:
		if appErr.Detail != "" {
			return appErr.Detail
		}
		return p.Sprintf(i18n.MsgInvalidLogin)
	case KindSessionExpired:
		return p.Sprintf(i18n.MsgSessionExpired)
	case KindNoSession:
		switch appErr.Op {
		case OpRegister:
			return p.Sprintf(i18n.MsgRegisterNoSession)
		case OpUnregister:
			return p.Sprintf(i18n.MsgUnregNoSession)
		}
		return p.Sprintf(i18n.MsgLoginRequired)
	case KindUnavailable:
		return p.Sprintf(i18n.MsgUnavailable)
	}
	switch appErr.Op {
	case OpRegister:
		return p.Sprintf(i18n.MsgRegisterUnknown)
	case OpUnregister:
		return p.Sprintf(i18n.MsgUnregUnknown)
	}
	// Operations without their own wording fall back to the backend's text.
	if appErr.Detail != "" {
		return appErr.Detail
	}
	return p.Sprintf(i18n.MsgUnknown)
}
