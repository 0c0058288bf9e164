package store

import (
	"errors"
	"strings"
)

// ErrDuplicateAnalysis indicates an insert collided with an existing
// (filename, file_hash) pair. The pipeline treats this as "already analyzed".
var ErrDuplicateAnalysis = errors.New("analysis already exists for filename and content hash")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
