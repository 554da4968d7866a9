package core

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewID generates a new ULID with the specified prefix, used to
// correlate log lines belonging to one command invocation or job.
// Example: NewID("req") returns "req_01G0EZ1XTM37C5X11SQTDNCTM1".
func NewID(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		panic("Prefix cannot be empty")
	}
	cleanPrefix := strings.TrimSpace(strings.ToLower(prefix))
	return fmt.Sprintf("%s_%s", cleanPrefix, ulid.Make().String())
}
