package translate

import "errors"

var (
	// ErrRemoteTranslationFailed means the remote service answered with a
	// non-success reply.
	ErrRemoteTranslationFailed = errors.New("remote translation failed")

	// ErrRemoteTranslationUnavailable means the remote service could not be
	// used at all: no translator, transport or auth failure, or timeout.
	ErrRemoteTranslationUnavailable = errors.New("remote translation unavailable")
)

// FailedError carries the upstream error message of a rejected request.
type FailedError struct {
	Message string
}

func (e *FailedError) Error() string {
	if e.Message == "" {
		return ErrRemoteTranslationFailed.Error()
	}
	return ErrRemoteTranslationFailed.Error() + ": " + e.Message
}

// Is makes errors.Is(err, ErrRemoteTranslationFailed) match.
func (e *FailedError) Is(target error) bool {
	return target == ErrRemoteTranslationFailed
}

// UpstreamMessage returns the upstream error message carried by a
// FailedError in err's chain, or "".
func UpstreamMessage(err error) string {
	var fe *FailedError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return ""
}
