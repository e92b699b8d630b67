// call
package replica

// Call is an outgoing inter-canister call descriptor: produced by
// a canister while it processes a message, not yet routed. The
// RequestID is assigned when the descriptor is created; the
// canister loop mints one for any descriptor still carrying zero.
type Call struct {
	Callee    Principal
	Method    string
	Args      []byte
	Cycles    uint64
	RequestID RequestID
}
