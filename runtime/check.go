package runtime

import "fmt"

// check panics on a violated internal invariant. These are not user
// errors: an invalidated invariant must not continue executing.
func check(cond bool, predicate string) {
	if !cond {
		panic(fmt.Sprintf("internal error: check %q failed", predicate))
	}
}
