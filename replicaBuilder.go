// replicaBuilder
package replica

// Builder for a replica.
type ReplicaBuilder struct {
	replica   *Replica
	canisters []Canister
}

// Start building a replica.
func BuildReplica() *ReplicaBuilder {
	return &ReplicaBuilder{
		replica: &Replica{
			ctl:     newMailbox[controlMsg](),
			pending: newPendingTable(),
			sysBus:  NewEventBus(nil),
		},
	}
}

// Host the given canister in the replica. The canister starts when
// Run is called.
func (b *ReplicaBuilder) WithCanister(c Canister) *ReplicaBuilder {
	b.canisters = append(b.canisters, c)
	return b
}

// Restrict what the system bus will carry.
func (b *ReplicaBuilder) WithBusFilter(filter func(interface{}) bool) *ReplicaBuilder {
	b.replica.sysBus = NewEventBus(filter)
	return b
}

// This must be the last call in the builder chain. It starts the
// replica control loop and the loop of every canister added so
// far.
func (b *ReplicaBuilder) Run() *Replica {
	r := b.replica
	go r.controlLoop()
	for _, c := range b.canisters {
		r.AddCanister(c)
	}
	return r
}
