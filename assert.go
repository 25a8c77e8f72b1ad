//go:build !debug

package physics

import (
	"fmt"
	"log/slog"
)

// invariant reports a broken invariant. Release builds keep going with the
// caller's fallback value; build with -tags debug to panic instead.
func invariant(truth bool, msg ...interface{}) {
	if !truth {
		slog.Warn("physics: assertion failed", "msg", fmt.Sprint(msg...))
	}
}
