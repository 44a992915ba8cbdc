// Package reason builds the machine-readable prefixed reason strings
// carried in OK and CLOSED envelopes.
package reason

import "fmt"

// P is a reason prefix.
type P string

var (
	AuthRequired P = "auth-required"
	PoW          P = "pow"
	Duplicate    P = "duplicate"
	Blocked      P = "blocked"
	RateLimited  P = "rate-limited"
	Invalid      P = "invalid"
	Error        P = "error"
	Unsupported  P = "unsupported"
	Restricted   P = "restricted"
)

// F formats a reason with its prefix. An empty format yields the bare
// "prefix:" form used for flagging duplicates.
func (p P) F(format string, a ...any) string {
	if format == "" {
		return string(p) + ":"
	}
	return string(p) + ": " + fmt.Sprintf(format, a...)
}
