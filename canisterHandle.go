// canisterHandle
package replica

// CanisterHandle is an external, non-owning reference to one
// canister hosted in a replica: just the identity plus a
// back-reference to the replica. Handles are cheap; create and
// discard them freely. Every submission creates its own outcome
// channel, so a handle can be shared between goroutines.
type CanisterHandle struct {
	replica    *Replica
	canisterID Principal
}

// Identity of the canister this handle points at.
func (h *CanisterHandle) Id() Principal {
	return h.canisterID
}

// Create a new call builder to call this canister.
func (h *CanisterHandle) NewCall(method string) *CallBuilder {
	return h.replica.NewCall(h.canisterID, method)
}

// Run the given opaque function on the canister's own goroutine
// and wait for the outcome. The function runs with the same
// exclusivity guarantee as any message: nothing else touches the
// canister while it executes.
func (h *CanisterHandle) Custom(f func(), env Env) CallReply {
	return <-h.CustomAsync(f, env)
}

// Like Custom but returns immediately with the channel the outcome
// will arrive on.
func (h *CanisterHandle) CustomAsync(f func(), env Env) <-chan CallReply {
	outcome := make(chan CallReply, 1)
	h.replica.enqueueRequest(h.canisterID, TaskMessage{
		RequestID: NewRequestID(),
		Task:      f,
		Env:       env,
	}, outcome)
	return outcome
}

// Submit the given envelope to the canister as a structured
// request and wait for the outcome.
func (h *CanisterHandle) RunEnv(env Env) CallReply {
	return <-h.RunEnvAsync(env)
}

// Like RunEnv but returns immediately with the channel the outcome
// will arrive on.
func (h *CanisterHandle) RunEnvAsync(env Env) <-chan CallReply {
	outcome := make(chan CallReply, 1)
	h.replica.enqueueRequest(h.canisterID, RequestMessage{
		RequestID: NewRequestID(),
		Env:       env,
	}, outcome)
	return outcome
}

// Run the init hook of the canister. For more customization use
// RunEnv with InitEnv.
func (h *CanisterHandle) Init() CallReply {
	return h.RunEnv(InitEnv())
}

// Run the pre-upgrade hook of the canister.
func (h *CanisterHandle) PreUpgrade() CallReply {
	return h.RunEnv(PreUpgradeEnv())
}

// Run the post-upgrade hook of the canister.
func (h *CanisterHandle) PostUpgrade() CallReply {
	return h.RunEnv(PostUpgradeEnv())
}

// Run the heartbeat hook of the canister.
func (h *CanisterHandle) Heartbeat() CallReply {
	return h.RunEnv(HeartbeatEnv())
}
