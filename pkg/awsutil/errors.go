package awsutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// ErrNoCredentials is wrapped into every credential retrieval failure of a config built
// by LoadConfig
var ErrNoCredentials = errors.New("unable to locate credentials")

// credentialSignatures are message fragments the SDKs use when no credentials could be
// found. They are only consulted when the error chain lacks ErrNoCredentials.
var credentialSignatures = []string{
	"unable to locate credentials",
	"failed to retrieve credentials",
	"failed to refresh cached credentials",
	"get identity: get credentials",
	"no valid providers in chain",
	"nocredentialproviders",
}

func markNoCredentials(err error) error {
	if errors.Is(err, ErrNoCredentials) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrNoCredentials, err)
}

// IsCredentialsMissing reports whether err means no credentials could be located at all,
// as opposed to credentials that were found and then rejected
func IsCredentialsMissing(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoCredentials) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, signature := range credentialSignatures {
		if strings.Contains(msg, signature) {
			return true
		}
	}
	return false
}

// ErrorKind is the operational failure class of an AWS call
type ErrorKind string

const (
	KindNone        ErrorKind = ""
	KindCredentials ErrorKind = "credentials"
	KindRejected    ErrorKind = "rejected"
	KindTimeout     ErrorKind = "timeout"
	KindTransport   ErrorKind = "transport"
	KindUnknown     ErrorKind = "unknown"
)

// Classify maps err to its failure class. Anything it cannot place is KindUnknown,
// which callers must treat as a programming error.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	if IsCredentialsMissing(err) {
		return KindCredentials
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return KindRejected
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTimeout
	}
	var canceledErr *aws.RequestCanceledError
	if errors.As(err, &canceledErr) {
		return KindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return KindTimeout
	}

	var sendErr *smithyhttp.RequestSendError
	var urlErr *url.Error
	var maxAttemptsErr *retry.MaxAttemptsError
	var opErr *smithy.OperationError
	switch {
	case errors.As(err, &sendErr),
		errors.As(err, &urlErr),
		errors.As(err, &netErr),
		errors.As(err, &maxAttemptsErr),
		errors.As(err, &opErr):
		return KindTransport
	}

	return KindUnknown
}

// IsRecognized reports whether err is an operational failure that must be absorbed
// instead of failing the request
func IsRecognized(err error) bool {
	kind := Classify(err)
	return kind != KindNone && kind != KindUnknown
}
