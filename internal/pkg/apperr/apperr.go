package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the stable machine-readable error type exposed to callers.
type Kind string

const (
	KindValidation       Kind = "VALIDATION_ERROR"
	KindInvalidParameter Kind = "INVALID_PARAMETER"

	KindDocumentNotFound   Kind = "DOCUMENT_NOT_FOUND"
	KindDocumentEmpty      Kind = "DOCUMENT_EMPTY"
	KindDocumentTooLarge   Kind = "DOCUMENT_TOO_LARGE"
	KindInvalidContentType Kind = "INVALID_CONTENT_TYPE"

	KindUpstreamUnavailable Kind = "UPSTREAM_UNAVAILABLE"
	KindUpstreamRejected    Kind = "UPSTREAM_REJECTED"
	KindUpstreamOverloaded  Kind = "UPSTREAM_OVERLOADED"
	KindUpstreamMalformed   Kind = "UPSTREAM_MALFORMED"
	KindEmptyResponse       Kind = "EMPTY_RESPONSE"
	KindMissingChoices      Kind = "MISSING_CHOICES"
	KindNoChoices           Kind = "NO_CHOICES"
	KindMissingMessage      Kind = "MISSING_MESSAGE"
	KindMissingContent      Kind = "MISSING_CONTENT"

	KindRetrievalRejected  Kind = "RETRIEVAL_REJECTED"
	KindRetrievalMalformed Kind = "RETRIEVAL_MALFORMED"

	KindInternal Kind = "INTERNAL_ERROR"
)

// Class groups kinds into the five top-level categories.
type Class string

const (
	ClassValidation Class = "ValidationError"
	ClassDocument   Class = "DocumentError"
	ClassUpstream   Class = "UpstreamError"
	ClassRetrieval  Class = "RetrievalError"
	ClassInternal   Class = "InternalError"
)

var kindClass = map[Kind]Class{
	KindValidation:       ClassValidation,
	KindInvalidParameter: ClassValidation,

	KindDocumentNotFound:   ClassDocument,
	KindDocumentEmpty:      ClassDocument,
	KindDocumentTooLarge:   ClassDocument,
	KindInvalidContentType: ClassDocument,

	KindUpstreamUnavailable: ClassUpstream,
	KindUpstreamRejected:    ClassUpstream,
	KindUpstreamOverloaded:  ClassUpstream,
	KindUpstreamMalformed:   ClassUpstream,
	KindEmptyResponse:       ClassUpstream,
	KindMissingChoices:      ClassUpstream,
	KindNoChoices:           ClassUpstream,
	KindMissingMessage:      ClassUpstream,
	KindMissingContent:      ClassUpstream,

	KindRetrievalRejected:  ClassRetrieval,
	KindRetrievalMalformed: ClassRetrieval,

	KindInternal: ClassInternal,
}

var kindMessage = map[Kind]string{
	KindValidation:       "invalid request",
	KindInvalidParameter: "invalid parameter",

	KindDocumentNotFound:   "the requested document does not exist",
	KindDocumentEmpty:      "the requested document is empty",
	KindDocumentTooLarge:   "the requested document is too large to process",
	KindInvalidContentType: "the document content type is not supported",

	KindUpstreamUnavailable: "the AI service is unreachable, please try again later",
	KindUpstreamRejected:    "the AI service rejected the request, please try again later",
	KindUpstreamOverloaded:  "the AI service is rate limited, please retry shortly",
	KindUpstreamMalformed:   "the AI service returned an unreadable response",
	KindEmptyResponse:       "the AI service returned an empty response",
	KindMissingChoices:      "the AI response is missing the choices array",
	KindNoChoices:           "the AI response contains no choices",
	KindMissingMessage:      "the AI response is missing the message object",
	KindMissingContent:      "the AI response is missing the message content",

	KindRetrievalRejected:  "the retrieval service rejected the request",
	KindRetrievalMalformed: "the retrieval service returned an unreadable response",

	KindInternal: "an unexpected error occurred, please try again",
}

// Error is a classified failure. It is created once at the boundary where the
// raw failure is first observed and propagated upward unchanged in kind.
type Error struct {
	Kind        Kind
	UserMessage string
	cause       error
}

func New(kind Kind) *Error {
	return &Error{Kind: kind, UserMessage: kindMessage[kind]}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, UserMessage: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, cause error) *Error {
	return &Error{Kind: kind, UserMessage: kindMessage[kind], cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.UserMessage, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.UserMessage)
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Class() Class {
	if class, ok := kindClass[e.Kind]; ok {
		return class
	}
	return ClassInternal
}

// Retryable reports whether the caller may usefully retry the same request.
func (e *Error) Retryable() bool {
	return e.Kind == KindUpstreamOverloaded || e.Kind == KindUpstreamUnavailable
}

// HTTPStatus is a status-class recommendation; the transport binding decides
// the final code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInvalidParameter, KindDocumentEmpty, KindDocumentTooLarge, KindInvalidContentType:
		return http.StatusBadRequest
	case KindDocumentNotFound:
		return http.StatusNotFound
	case KindUpstreamOverloaded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Classify maps any error to a classified one. Already-classified errors pass
// through untouched so a kind assigned at the failure boundary survives.
func Classify(err error) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		return classified
	}
	return Wrap(KindInternal, err)
}

func IsKind(err error, kind Kind) bool {
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind == kind
	}
	return false
}
