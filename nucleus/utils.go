package nucleus

import "fmt"

// Formatted panic(), for broken internal invariants
func panicFmt(format string, a ...interface{}) {
	panic(fmt.Sprintf(format, a...))
}
