package messaging

import (
	goerrors "github.com/goliatone/go-errors"
)

// TextCodeDispatchFailed marks a reply that could not be delivered.
const TextCodeDispatchFailed = "DISPATCH_FAILED"

func dispatchError(source error, message string, status int, metadata map[string]any) error {
	var err *goerrors.Error
	if source == nil {
		err = goerrors.New(message, goerrors.CategoryExternal)
	} else {
		err = goerrors.Wrap(source, goerrors.CategoryExternal, message)
	}
	err = err.WithCode(status).WithTextCode(TextCodeDispatchFailed)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// IsDispatchError reports whether err is a delivery failure from Dispatcher.
func IsDispatchError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == TextCodeDispatchFailed
}
