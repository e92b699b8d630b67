// canisterBuilder
package replica

import (
	"fmt"
)

// CanisterBuilder is used to build and decorate HandlerCanisters.
// Errors accumulate along the chain and surface from Build.
type CanisterBuilder struct {
	can *HandlerCanister
	err error
}

// Start building a canister with the given identity.
func BuildCanister(id Principal) *CanisterBuilder {
	b := &CanisterBuilder{
		can: &HandlerCanister{
			id:        id,
			methods:   make(map[string]Handler),
			callbacks: make(map[RequestID]pendingReply),
		},
	}
	if id == "" {
		b.err = fmt.Errorf("invalid canister id %q", id)
	}
	return b
}

// Add a handler for the named method.
func (b *CanisterBuilder) WithMethod(name string, h Handler) *CanisterBuilder {
	if b.err != nil {
		return b
	}
	if name == "" {
		b.err = fmt.Errorf("invalid method name %q", name)
		return b
	}
	if _, ok := b.can.methods[name]; ok {
		b.err = fmt.Errorf("method %q already defined", name)
		return b
	}
	b.can.methods[name] = h
	return b
}

// Add an init hook. It gets called when the canonical initialize
// request is submitted.
func (b *CanisterBuilder) WithInit(h Handler) *CanisterBuilder {
	if b.err == nil {
		b.can.init = h
	}
	return b
}

// Add a pre-upgrade hook.
func (b *CanisterBuilder) WithPreUpgrade(h Handler) *CanisterBuilder {
	if b.err == nil {
		b.can.preUpgrade = h
	}
	return b
}

// Add a post-upgrade hook.
func (b *CanisterBuilder) WithPostUpgrade(h Handler) *CanisterBuilder {
	if b.err == nil {
		b.can.postUpgrade = h
	}
	return b
}

// Add a heartbeat hook.
func (b *CanisterBuilder) WithHeartbeat(h Handler) *CanisterBuilder {
	if b.err == nil {
		b.can.heartbeat = h
	}
	return b
}

// Start the canister with the given cycle balance.
func (b *CanisterBuilder) WithBalance(cycles uint64) *CanisterBuilder {
	if b.err == nil {
		b.can.balance = cycles
	}
	return b
}

// This must be the last call in the builder chain.
func (b *CanisterBuilder) Build() (*HandlerCanister, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.can, nil
}

// Build the canister, panicking on a builder error. Convenient in
// tests and examples where the chain is statically correct.
func (b *CanisterBuilder) MustBuild() *HandlerCanister {
	c, err := b.Build()
	if err != nil {
		panic(err)
	}
	return c
}
