package framework

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/gavv/httpexpect/v2"
)

// FailureKind says what went wrong in a failed test, so that a report can tell an API that
// returned the wrong data apart from one that could not be reached or parsed.
type FailureKind string

const (
	// KindConfiguration means the run could not start. It never appears in a test result.
	KindConfiguration FailureKind = "configuration"
	// KindTransport means no response was received, for a reason other than a timeout.
	KindTransport FailureKind = "transport"
	// KindTimeout means a request exceeded the configured timeout.
	KindTimeout FailureKind = "timeout"
	// KindContract means the response did not meet an expectation: status, shape, or value.
	KindContract FailureKind = "contract"
	// KindMalformedBody means the response body was not valid JSON.
	KindMalformedBody FailureKind = "malformed-body"
	// KindDeserialization means the body was JSON but could not be bound to the model.
	KindDeserialization FailureKind = "deserialization"
)

// AllFailureKinds lists the kinds a test result can carry, in reporting order.
var AllFailureKinds = []FailureKind{
	KindTransport,
	KindTimeout,
	KindContract,
	KindMalformedBody,
	KindDeserialization,
}

// Failure is one recorded problem in a test.
type Failure struct {
	Kind    FailureKind
	Message string
	Err     error
}

func NewFailure(kind FailureKind, err error) Failure {
	return Failure{Kind: kind, Message: err.Error(), Err: err}
}

func (f Failure) Error() string {
	return fmt.Sprintf("[%s] %s", f.Kind, f.Message)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// ClassifyAssertion maps a failed httpexpect assertion to a FailureKind.
func ClassifyAssertion(f *httpexpect.AssertionFailure) FailureKind {
	for _, err := range f.Errors {
		if IsTimeout(err) {
			return KindTimeout
		}
	}
	switch f.Type {
	case httpexpect.AssertOperation:
		return KindTransport
	case httpexpect.AssertValid:
		return KindMalformedBody
	default:
		return KindContract
	}
}

// IsTimeout reports whether err represents an exceeded deadline.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

type assertionHandler struct {
	context   *Context
	formatter httpexpect.Formatter
}

func (h assertionHandler) Success(*httpexpect.AssertionContext) {}

func (h assertionHandler) Failure(ctx *httpexpect.AssertionContext, failure *httpexpect.AssertionFailure) {
	msg := h.formatter.FormatFailure(ctx, failure)
	h.context.Fail(Failure{Kind: ClassifyAssertion(failure), Message: msg, Err: errors.Join(failure.Errors...)})
	h.context.FailNow()
}
