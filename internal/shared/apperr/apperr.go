// Package apperr defines the error taxonomy shared by every feature and its mapping to HTTP status codes.
package apperr

import (
	"errors"
	"net/http"
)

// Kind classifies an error by how the request boundary should report it.
type Kind int

const (
	// KindInternal is the zero value; unknown errors are reported as 500.
	KindInternal Kind = iota
	// KindValidation は入力値の不備（必須項目の欠落・形式不正）です。
	KindValidation
	// KindAuth はセッショントークンの欠落・不正・期限切れです。
	KindAuth
	// KindNotFound は要求されたキーのリソースが存在しないことを表します。
	KindNotFound
	// KindConflict は条件付き書き込みの重複です。リトライ対象ではありません。
	KindConflict
	// KindUpstream は外部呼び出し（IdP・クローラ・銘柄検索）の失敗またはタイムアウトです。
	KindUpstream
	// KindPersistence はストアが利用できない場合のエラーです。
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindUpstream:
		return "upstream"
	case KindPersistence:
		return "persistence"
	default:
		return "internal"
	}
}

// Error is a classified error. Message is safe to show to clients; Err carries the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	if e.Message == "" {
		return e.Err.Error()
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a classified error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Wrap classifies err. A nil err yields nil.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: msg, Err: err}
}

// Validation, NotFound, Upstream and Persistence are shorthands used across features.
func Validation(msg string) *Error { return New(KindValidation, msg) }

func NotFound(msg string) *Error { return New(KindNotFound, msg) }

func Upstream(msg string, err error) error { return Wrap(KindUpstream, msg, err) }

func Persistence(msg string, err error) error { return Wrap(KindPersistence, msg, err) }

// KindOf reports the kind of the outermost classified error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps err to the response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage returns the client-safe message for err.
// Upstream and persistence details are never exposed.
func PublicMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "internal server error"
	}
	switch e.Kind {
	case KindUpstream:
		return "upstream service unavailable"
	case KindPersistence, KindInternal:
		return "internal server error"
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}
