// handlerCanister
package replica

import (
	"fmt"

	log "github.com/sirupsen/logrus"
)

// Handler processes one inbound invocation of a canister method or
// lifecycle hook.
type Handler func(ctx *Ctx)

// ReplyHandler processes the reply to one outgoing call issued
// with CtxCall.OnReply.
type ReplyHandler func(ctx *Ctx, reply CallReply)

// HandlerCanister is a ready-made Canister implementation with a
// method dispatch table and lifecycle hooks, built by a
// CanisterBuilder. The replica core never depends on it; anything
// implementing Canister runs the same way.
//
// All fields are owned by the canister goroutine once the canister
// is added to a replica. The callbacks table maps outstanding
// RequestIDs to the continuation that consumes their reply; it is
// only ever touched from ProcessMessage, so it needs no lock.
type HandlerCanister struct {
	id          Principal
	balance     uint64
	methods     map[string]Handler
	init        Handler
	preUpgrade  Handler
	postUpgrade Handler
	heartbeat   Handler
	callbacks   map[RequestID]pendingReply
}

type pendingReply struct {
	fn ReplyHandler
	in *inflight
}

func (c *HandlerCanister) Id() Principal {
	return c.id
}

// Current cycle balance. Only meaningful from the canister's own
// handlers; external observation races with execution.
func (c *HandlerCanister) Balance() uint64 {
	return c.balance
}

// The processing entry point invoked by the canister loop, one
// message at a time.
func (c *HandlerCanister) ProcessMessage(msg Message, replySender chan<- CallReply) []Call {
	switch m := msg.(type) {
	case TaskMessage:
		return c.processTask(m, replySender)
	case RequestMessage:
		return c.processRequest(m, replySender)
	case ReplyMessage:
		return c.processReply(m)
	}
	log.Errorf("%v received unknown message type %v", c.id, msg.Type())
	return nil
}

// Run an ad hoc task on the canister goroutine. A task that
// returns normally resolves as an empty successful outcome with
// every attached cycle refunded; a task that panics resolves as a
// trap.
func (c *HandlerCanister) processTask(m TaskMessage, replySender chan<- CallReply) []Call {
	in := &inflight{replySender: replySender, remaining: m.Env.CyclesAvailable}
	ctx := &Ctx{can: c, in: in, env: m.Env}

	if trapped := c.protect(ctx, m.Task); !trapped && !in.replied {
		ctx.Reply(nil)
	}
	return nil
}

func (c *HandlerCanister) processRequest(m RequestMessage, replySender chan<- CallReply) []Call {
	in := &inflight{replySender: replySender, remaining: m.Env.CyclesAvailable}
	ctx := &Ctx{can: c, in: in, env: m.Env}

	h := c.lookupHandler(m.Env)
	if h == nil {
		switch m.Env.Entry {
		case EntryInit, EntryPreUpgrade, EntryPostUpgrade, EntryHeartbeat:
			// lifecycle hooks are optional
			ctx.Reply(nil)
		default:
			in.deliver(ReplyReject(CanisterError,
				fmt.Sprintf("canister has no method '%v'", m.Env.Method), in.remaining))
		}
		return nil
	}

	if trapped := c.protect(ctx, func() { h(ctx) }); trapped {
		return nil
	}
	return c.settle(ctx)
}

// Consume the reply to a call this canister issued earlier. The
// continuation registered for the RequestID runs here, on the
// canister goroutine, with the same exclusivity as any handler.
func (c *HandlerCanister) processReply(m ReplyMessage) []Call {
	pr, ok := c.callbacks[m.RequestID]
	if !ok {
		log.Errorf("%v received reply for unknown request %v", c.id, m.RequestID)
		return nil
	}
	delete(c.callbacks, m.RequestID)
	pr.in.outstanding--
	// cycles the callee sent back return to our balance
	c.balance += m.Reply.CyclesRefunded

	ctx := &Ctx{can: c, in: pr.in, env: replyEnv(c.id, m.Reply.CyclesRefunded)}
	if pr.fn != nil {
		fn := pr.fn
		if trapped := c.protect(ctx, func() { fn(ctx, m.Reply) }); trapped {
			return nil
		}
	}
	return c.settle(ctx)
}

// Settle one handler invocation: register the continuations for
// the calls it queued and hand the descriptors to the canister
// loop. A message whose handler produced no reply and has no
// outstanding calls left can never resolve, so it is rejected here
// rather than leaving the caller hanging.
func (c *HandlerCanister) settle(ctx *Ctx) []Call {
	calls := make([]Call, 0, len(ctx.calls))
	for _, qc := range ctx.calls {
		c.callbacks[qc.call.RequestID] = pendingReply{fn: qc.onReply, in: ctx.in}
		ctx.in.outstanding++
		calls = append(calls, qc.call)
	}

	if ctx.in.outstanding == 0 && !ctx.in.replied && ctx.in.replySender != nil {
		ctx.in.deliver(ReplyReject(CanisterError, "canister did not reply", ctx.in.remaining))
	}
	return calls
}

func (c *HandlerCanister) lookupHandler(env Env) Handler {
	switch env.Entry {
	case EntryInit:
		return c.init
	case EntryPreUpgrade:
		return c.preUpgrade
	case EntryPostUpgrade:
		return c.postUpgrade
	case EntryHeartbeat:
		return c.heartbeat
	case EntryUpdate, EntryQuery:
		return c.methods[env.Method]
	}
	return nil
}

// Function to handle panics thrown by a handler. The invocation
// resolves as a canister-error rejection refunding the unaccepted
// cycles, queued calls are discarded, and the canister continues
// with the next message.
func (c *HandlerCanister) protect(ctx *Ctx, f func()) (trapped bool) {
	defer func() {
		if x := recover(); x != nil {
			log.WithFields(log.Fields{
				"canister": c.id.String(),
			}).Errorf("canister trapped: %v", x)
			trapped = true
			// queued calls are discarded; cycles already attached
			// to them go back to the balance
			for _, qc := range ctx.calls {
				c.balance += qc.call.Cycles
			}
			ctx.calls = nil
			if !ctx.in.replied {
				refund := ctx.in.remaining
				ctx.in.remaining = 0
				ctx.in.deliver(ReplyReject(CanisterError,
					fmt.Sprintf("canister trapped: %v", x), refund))
			}
		}
	}()
	f()
	return
}
