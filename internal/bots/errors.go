package bots

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeMalformedEvent   = "MALFORMED_EVENT"
	TextCodeCompletionFailed = "COMPLETION_FAILED"
)

func malformedEvent(source error, message string) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryBadInput)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryBadInput, message)
	}
	return err.WithCode(http.StatusBadRequest).WithTextCode(TextCodeMalformedEvent)
}

func completionFailed(source error, provider string) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New("completion returned no text", goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, "completion request failed")
	}
	err = err.WithCode(http.StatusBadGateway).WithTextCode(TextCodeCompletionFailed)
	err.WithMetadata(map[string]any{"provider": provider})
	return err
}

// IsMalformedEvent reports whether err was returned by ParseEvent.
func IsMalformedEvent(err error) bool {
	return hasTextCode(err, TextCodeMalformedEvent)
}

// IsCompletionFailure reports whether err describes a failed completion call.
func IsCompletionFailure(err error) bool {
	return hasTextCode(err, TextCodeCompletionFailed)
}

func hasTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
