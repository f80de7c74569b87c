//go:build impulsedebug

package invariant

import "log"

const Enabled = true

// Check panics with msg when ok is false
func Check(ok bool, msg string) bool {
	if !ok {
		log.Panicln("invariant violated:", msg)
	}
	return ok
}
