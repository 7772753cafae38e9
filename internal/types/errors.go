package types

import (
	"errors"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

type ErrorKind string

const (
	ErrorKindMalformedVersion         ErrorKind = "malformed_version"
	ErrorKindNotFound                 ErrorKind = "not_found"
	ErrorKindCorruptManifest          ErrorKind = "corrupt_manifest"
	ErrorKindCorruptStore             ErrorKind = "corrupt_store"
	ErrorKindDependencyResolution     ErrorKind = "dependency_resolution"
	ErrorKindMissingDependencyVersion ErrorKind = "missing_dependency_version"
	ErrorKindStoreAccess              ErrorKind = "store_access"
	ErrorKindTransfer                 ErrorKind = "transfer"
	ErrorKindNotAvailable             ErrorKind = "not_available"
	ErrorKindVersionNotFound          ErrorKind = "version_not_found"
	ErrorKindInvalidIdentifier        ErrorKind = "invalid_identifier"
	ErrorKindUnsupportedMediaType     ErrorKind = "unsupported_media_type"
	ErrorKindAborted                  ErrorKind = "aborted"
	ErrorKindPartialFailure           ErrorKind = "partial_failure"
)

// Code returns the errbuilder code used for errors of this kind.
func (k ErrorKind) Code() errbuilder.ErrCode {
	switch k {
	case ErrorKindMalformedVersion, ErrorKindMissingDependencyVersion,
		ErrorKindInvalidIdentifier, ErrorKindUnsupportedMediaType:
		return errbuilder.CodeInvalidArgument
	case ErrorKindNotFound, ErrorKindNotAvailable, ErrorKindVersionNotFound:
		return errbuilder.CodeNotFound
	case ErrorKindDependencyResolution, ErrorKindAborted:
		return errbuilder.CodeFailedPrecondition
	default:
		return errbuilder.CodeInternal
	}
}

// KindError tags an errbuilder error with its place in the error taxonomy.
type KindError struct {
	Kind ErrorKind
	Err  error
}

func (e *KindError) Error() string {
	return e.Err.Error()
}

func (e *KindError) Unwrap() error {
	return e.Err
}

// NewError builds an error of the given kind. cause may be nil.
func NewError(kind ErrorKind, msg string, cause error) error {
	builder := errbuilder.New().
		WithCode(kind.Code()).
		WithMsg(msg)
	if cause != nil {
		builder = builder.WithCause(cause)
	}
	return &KindError{Kind: kind, Err: builder}
}

// KindOf returns the kind of the outermost KindError in err's chain, or ""
// when err carries none.
func KindOf(err error) ErrorKind {
	var kindErr *KindError
	if errors.As(err, &kindErr) {
		return kindErr.Kind
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// ErrorMessage returns the builder message of err without its cause chain.
func ErrorMessage(err error) string {
	var builder *errbuilder.ErrBuilder
	if errors.As(err, &builder) && builder.Msg != "" {
		return builder.Msg
	}
	return err.Error()
}
