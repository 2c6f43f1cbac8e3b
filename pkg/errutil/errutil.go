package errutil

import (
	"fmt"

	"github.com/small-frappuccino/richpresence/pkg/errors"
	"github.com/small-frappuccino/richpresence/pkg/log"
)

// HandleConfigError executes fn and logs any error that occurs as a configuration-related error.
// It returns an io-categorized error with context about the operation and path.
func HandleConfigError(operation, path string, fn func() error) error {
	if fn == nil {
		return fmt.Errorf("nil function provided")
	}

	err := fn()
	if err == nil {
		return nil
	}

	log.ErrorLoggerRaw().Error("Config operation failed", "operation", operation, "path", path, "err", err)
	return errors.IO("files", fmt.Sprintf("%s %s", operation, path), err)
}
