// canister
package replica

import (
	log "github.com/sirupsen/logrus"
)

// Canister is the behavior contract the replica runs. A canister
// owns its state exclusively: the replica moves the value into a
// dedicated goroutine at registration and from then on all access
// goes through messages, so ProcessMessage never needs locking.
//
// ProcessMessage is handed one inbound message and, when the
// sender is awaiting an outcome, the channel to deliver it on. It
// returns the ordered list of outgoing calls the processing
// produced; the replica routes each one and arranges for its reply
// to come back into this canister's mailbox as an ordinary
// ReplyMessage.
type Canister interface {
	Id() Principal
	ProcessMessage(msg Message, replySender chan<- CallReply) []Call
}

// This is the main loop that reads deliveries from the canister
// mailbox one at a time and invokes ProcessMessage. No second
// message for this canister begins processing until the previous
// invocation has returned; that is the whole actor guarantee.
//
// Every outgoing call the invocation yields is routed through the
// replica with a fresh outcome channel, and an ephemeral watcher
// goroutine reinjects the eventual reply into this same mailbox.
func (r *Replica) canisterLoop(c Canister, mb *mailbox[delivery]) {
	origin := c.Id()
	for {
		d := mb.take()
		calls := c.ProcessMessage(d.msg, d.replySender)

		for _, call := range calls {
			if call.RequestID == 0 {
				call.RequestID = NewRequestID()
			}
			env := UpdateEnv(call.Method, call.Args, call.Cycles).WithCaller(origin)
			outcome := make(chan CallReply, 1)

			r.pending.record(call.RequestID, origin, call.Callee)
			r.enqueueRequest(call.Callee, RequestMessage{RequestID: call.RequestID, Env: env}, outcome)
			go r.watch(origin, call.RequestID, outcome)
		}
	}
}

// Ephemeral watcher for one outstanding call: waits for the
// outcome, retires the pending entry, and reinjects the reply into
// the originating canister's mailbox.
func (r *Replica) watch(origin Principal, id RequestID, outcome <-chan CallReply) {
	reply := <-outcome
	r.pending.retire(id)
	log.Debugf("call %v to reply for %v", id, origin)
	r.routeReply(origin, reply.toMessage(id))
}
