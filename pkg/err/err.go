package errprocess

import (
	"errors"

	"cov_inspection_service/pkg/logger"
)

// Set logs the message at ERROR and returns it as an error value.
func Set(errMsg string) error {
	logger.Log.Error(errMsg)
	return errors.New(errMsg)
}
