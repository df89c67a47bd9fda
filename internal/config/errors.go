package config

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// TextCodeStartupConfig marks configuration problems that must stop the
// process before it accepts traffic.
const TextCodeStartupConfig = "STARTUP_CONFIG"

func startupConfigError(problems []string) error {
	err := goerrors.New("invalid configuration: "+strings.Join(problems, "; "), goerrors.CategoryValidation).
		WithTextCode(TextCodeStartupConfig)
	err.WithMetadata(map[string]any{"problems": problems})
	return err
}

// IsStartupConfigError reports whether err came from Validate.
func IsStartupConfigError(err error) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == TextCodeStartupConfig
}
