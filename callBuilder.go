// callBuilder
package replica

// CallBuilder is the fluent, external way to construct and perform
// a call against a canister hosted in the replica. It builds an
// update envelope, routes it, and hands back either the resolved
// outcome (Perform) or the channel it will arrive on
// (PerformAsync).
type CallBuilder struct {
	replica *Replica
	callee  Principal
	method  string
	caller  Principal
	args    []byte
	cycles  uint64
}

// Create a new call builder on the replica, aimed at the given
// canister and method.
func (r *Replica) NewCall(id Principal, method string) *CallBuilder {
	return &CallBuilder{
		replica: r,
		callee:  id,
		method:  method,
		caller:  anonymous,
	}
}

// Set the caller identity carried in the envelope.
func (cb *CallBuilder) WithCaller(caller Principal) *CallBuilder {
	cb.caller = caller
	return cb
}

// Set the raw argument payload. The replica never interprets it.
func (cb *CallBuilder) WithArg(args []byte) *CallBuilder {
	cb.args = args
	return cb
}

// Attach cycles to the call.
func (cb *CallBuilder) WithPayment(cycles uint64) *CallBuilder {
	cb.cycles = cycles
	return cb
}

// Route the call and return the channel its outcome will arrive
// on. Exactly one CallReply is delivered per performed call, even
// when the destination does not exist.
func (cb *CallBuilder) PerformAsync() <-chan CallReply {
	env := UpdateEnv(cb.method, cb.args, cb.cycles).WithCaller(cb.caller)
	outcome := make(chan CallReply, 1)
	cb.replica.enqueueRequest(cb.callee, RequestMessage{
		RequestID: NewRequestID(),
		Env:       env,
	}, outcome)
	return outcome
}

// Route the call and wait for its outcome.
func (cb *CallBuilder) Perform() CallReply {
	return <-cb.PerformAsync()
}
