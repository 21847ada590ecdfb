package usecase

import (
	"errors"

	"github.com/V4T54L/causeway/internal/pkg/exception"
)

// IsQueryError reports whether err stems from a malformed view request or a
// query that failed to compile or evaluate.
func IsQueryError(err error) bool {
	var ex *exception.Exception
	return errors.Is(err, ErrInvalidViewRequest) || errors.As(err, &ex)
}
