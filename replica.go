// replica
package replica

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Control messages consumed by the replica loop.
type controlMsg interface {
	control()
}

type canisterAdded struct {
	canisterID Principal
	mb         *mailbox[delivery]
	ack        chan<- error
}

type canisterRequest struct {
	canisterID  Principal
	msg         Message
	replySender chan<- CallReply
}

type canisterReply struct {
	canisterID Principal
	msg        ReplyMessage
}

func (canisterAdded) control()   {}
func (canisterRequest) control() {}
func (canisterReply) control()   {}

// Replica is a local replica hosting one or several canisters. It
// is the control plane of the simulator: it owns the registry
// mapping canister identity to mailbox and makes every routing
// decision on one serialized loop, so the registry needs no
// locking. Canisters never talk to each other directly; every
// request and every reply goes through here.
type Replica struct {
	ctl     *mailbox[controlMsg]
	pending *pendingTable
	sysBus  *EventBus
}

// Create a replica hosting the given canisters. This is a
// convenience method to create a replica without calling
// ReplicaBuilder.
func NewReplica(canisters ...Canister) *Replica {
	b := BuildReplica()
	for _, c := range canisters {
		b.WithCanister(c)
	}
	return b.Run()
}

// The replica control loop. All registry reads and writes happen
// here and nowhere else.
func (r *Replica) controlLoop() {
	registry := make(map[Principal]*mailbox[delivery])

	for {
		switch m := r.ctl.take().(type) {
		case canisterAdded:
			if _, ok := registry[m.canisterID]; ok {
				m.ack <- fmt.Errorf("canister '%v' is already defined in the replica", m.canisterID)
				continue
			}
			registry[m.canisterID] = m.mb
			r.sysBus.Publish(CanisterLifecycle, fmt.Sprintf("%v registered", m.canisterID))
			m.ack <- nil

		case canisterRequest:
			mb, ok := registry[m.canisterID]
			if !ok {
				r.rejectUnroutable(m)
				continue
			}
			mb.put(delivery{msg: m.msg, replySender: m.replySender})

		case canisterReply:
			mb, ok := registry[m.canisterID]
			if !ok {
				// A reply can only originate from a call a live
				// canister issued; losing the origin mid-call is a
				// bug, not a runtime condition.
				log.Panicf("reply %v for canister %v but it is not registered",
					m.msg.RequestID, m.canisterID)
			}
			mb.put(delivery{msg: m.msg})
		}
	}
}

// Synthesize the outcome for a request whose destination is not in
// the registry: a destination-invalid rejection refunding every
// cycle the caller attached. Delivered straight on the caller's
// outcome channel; no mailbox is involved.
func (r *Replica) rejectUnroutable(m canisterRequest) {
	if m.msg.Type() == MsgTypeReply {
		log.Panicf("reply routed as request to unknown canister %v", m.canisterID)
	}

	reason := fmt.Sprintf("canister '%v' does not exist", m.canisterID)
	log.WithFields(log.Fields{
		"canister": m.canisterID.String(),
	}).Debug(reason)
	r.sysBus.Publish(RoutingProblem, reason)

	if m.replySender == nil {
		// fire-and-forget send to a missing canister; nothing to
		// refund into, nothing to do
		return
	}
	m.replySender <- ReplyReject(DestinationInvalid, reason, m.msg.AttachedCycles())
}

// Add the given canister to this replica. The canister value is
// moved into its own goroutine here and must not be used by the
// caller afterwards. Registering an identity twice is a
// configuration error, not a runtime condition: the second
// AddCanister panics and no canister loop is started for it.
func (r *Replica) AddCanister(c Canister) *CanisterHandle {
	mb := newMailbox[delivery]()
	ack := make(chan error, 1)
	r.ctl.put(canisterAdded{canisterID: c.Id(), mb: mb, ack: ack})
	if err := <-ack; err != nil {
		log.Panic(err)
	}
	go r.canisterLoop(c, mb)
	return &CanisterHandle{replica: r, canisterID: c.Id()}
}

// Return the handle to a canister. The handle does not own
// anything; it can be created freely and discarded.
func (r *Replica) GetCanister(id Principal) *CanisterHandle {
	return &CanisterHandle{replica: r, canisterID: id}
}

// Enqueue a request for the destination canister. The reply sender
// may be nil for fire-and-forget submissions.
func (r *Replica) enqueueRequest(id Principal, msg Message, replySender chan<- CallReply) {
	r.ctl.put(canisterRequest{canisterID: id, msg: msg, replySender: replySender})
}

// Route a reply back into the mailbox of the canister that issued
// the call.
func (r *Replica) routeReply(origin Principal, msg ReplyMessage) {
	r.ctl.put(canisterReply{canisterID: origin, msg: msg})
}

// Number of calls issued by canisters that have not resolved yet.
func (r *Replica) PendingCalls() int {
	return r.pending.count()
}

// Snapshot of the outstanding calls, keyed by RequestID.
func (r *Replica) PendingSnapshot() map[RequestID]PendingCall {
	return r.pending.snapshot()
}

// Get the system bus. It publishes canister lifecycle events and
// routing problems.
func (r *Replica) SystemBus() *EventBus {
	return r.sysBus
}
