// requestId
package replica

import (
	"sync/atomic"
)

// RequestID tags one in-flight inter-canister call so that its
// eventual reply can be matched back to the caller that issued it.
// IDs are unique for the lifetime of the process; zero is never
// issued and marks a call descriptor that has not been assigned
// an ID yet.
type RequestID uint64

var requestCounter atomic.Uint64

// Mint the next RequestID. Safe for concurrent use from any
// number of canister loops.
func NewRequestID() RequestID {
	return RequestID(requestCounter.Add(1))
}
