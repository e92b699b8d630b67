// principal
package replica

import (
	"github.com/google/uuid"
)

// Principal is the opaque identity of a canister or of an
// external caller. A Principal is immutable once assigned and
// is the only thing the replica uses to address a canister.
type Principal string

// The caller identity used when no explicit caller is set.
const anonymous = Principal("2vxsx-fae")

// Mint a fresh random Principal. Useful for tests and for
// callers that do not care about a stable identity.
func NewPrincipal() Principal {
	return Principal(uuid.NewString())
}

// The anonymous caller identity.
func AnonymousPrincipal() Principal {
	return anonymous
}

// Build a Principal from its textual form.
func PrincipalFromText(text string) Principal {
	return Principal(text)
}

func (p Principal) String() string {
	return string(p)
}

// Is this the anonymous identity?
func (p Principal) IsAnonymous() bool {
	return p == anonymous
}
