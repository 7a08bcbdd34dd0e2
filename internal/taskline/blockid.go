package taskline

import (
	"strings"

	"github.com/google/uuid"
)

// NewBlockID mints a short identifier suitable for a trailing ^blockid.
func NewBlockID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
