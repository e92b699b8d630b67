// ctx
package replica

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Book-keeping for one inbound message that may produce a reply:
// the channel to deliver the outcome on, the cycles still
// available from the caller, and how many downstream calls are
// still outstanding before the message can be considered settled.
// Shared between the original request Ctx and the Ctx of every
// reply callback it spawns; only ever touched on the canister
// goroutine.
type inflight struct {
	replySender chan<- CallReply
	remaining   uint64
	replied     bool
	outstanding int
}

// Produce the single outcome for this message. Panics on a second
// reply, which surfaces to the caller as a trap.
func (in *inflight) deliver(reply CallReply) {
	if in.replied {
		panic("a reply was already produced for this message")
	}
	in.replied = true
	if in.replySender != nil {
		in.replySender <- reply
	}
}

// Ctx is what a HandlerCanister hands to its handlers: the
// envelope accessors, cycle accounting, the reply surface, and the
// way to fan out further calls. A Ctx is only valid for the
// duration of the handler invocation it was created for.
type Ctx struct {
	can   *HandlerCanister
	in    *inflight
	env   Env
	calls []ctxCall
}

type ctxCall struct {
	call    Call
	onReply ReplyHandler
}

// ID of the current canister.
func (ctx *Ctx) Id() Principal {
	return ctx.can.id
}

// The caller who has invoked this method on the canister.
func (ctx *Ctx) Caller() Principal {
	return ctx.env.Caller
}

// The method the envelope is aimed at.
func (ctx *Ctx) Method() string {
	return ctx.env.Method
}

// The raw argument payload.
func (ctx *Ctx) Args() []byte {
	return ctx.env.Args
}

// Which entry point this invocation came through.
func (ctx *Ctx) Entry() EntryMode {
	return ctx.env.Entry
}

// The time in nanoseconds.
func (ctx *Ctx) Time() uint64 {
	return uint64(time.Now().UnixNano())
}

// The cycle balance of the canister.
func (ctx *Ctx) Balance() uint64 {
	return ctx.can.balance
}

// Cycles sent by the caller that have not been accepted yet.
// Whatever is left when the reply goes out is refunded.
func (ctx *Ctx) CyclesAvailable() uint64 {
	return ctx.in.remaining
}

// Accept up to amount of the available cycles into the canister
// balance. Returns the amount actually accepted.
func (ctx *Ctx) CyclesAccept(amount uint64) uint64 {
	if amount > ctx.in.remaining {
		amount = ctx.in.remaining
	}
	ctx.in.remaining -= amount
	ctx.can.balance += amount
	return amount
}

// Cycles the callee sent back on the reply being processed. Only
// meaningful inside a reply callback.
func (ctx *Ctx) MsgCyclesRefunded() uint64 {
	return ctx.env.CyclesRefunded
}

// Print a message tagged with the canister identity.
func (ctx *Ctx) Print(args ...interface{}) {
	log.WithFields(log.Fields{
		"canister": ctx.can.id.String(),
	}).Info(args...)
}

// Trap the invocation. The caller sees a canister-error rejection.
func (ctx *Ctx) Trap(format string, args ...interface{}) {
	panic(fmt.Sprintf(format, args...))
}

// Reply to the message with the given payload. Every cycle not
// accepted so far rides back to the caller as the refund. Replying
// twice traps.
func (ctx *Ctx) Reply(payload []byte) {
	refund := ctx.in.remaining
	ctx.in.remaining = 0
	ctx.in.deliver(ReplyData(payload, refund))
}

// Reject the message. The unaccepted cycles are refunded.
func (ctx *Ctx) Reject(message string) {
	refund := ctx.in.remaining
	ctx.in.remaining = 0
	ctx.in.deliver(ReplyReject(CanisterReject, message, refund))
}

// Queue an outgoing call to another canister. The call is routed
// after the handler returns; its reply comes back into this
// canister's mailbox and settles against this same message. The
// descriptor gets its RequestID here, at creation.
func (ctx *Ctx) Call(callee Principal, method string) *CtxCall {
	ctx.calls = append(ctx.calls, ctxCall{
		call: Call{Callee: callee, Method: method, RequestID: NewRequestID()},
	})
	return &CtxCall{ctx: ctx, idx: len(ctx.calls) - 1}
}

// CtxCall decorates one queued outgoing call.
type CtxCall struct {
	ctx *Ctx
	idx int
}

// Set the raw argument payload of the call.
func (cc *CtxCall) WithArg(args []byte) *CtxCall {
	cc.ctx.calls[cc.idx].call.Args = args
	return cc
}

// Attach cycles to the call, paid out of the canister balance.
// Traps if the balance does not cover it.
func (cc *CtxCall) WithPayment(cycles uint64) *CtxCall {
	can := cc.ctx.can
	queued := &cc.ctx.calls[cc.idx].call
	if can.balance+queued.Cycles < cycles {
		panic(fmt.Sprintf("insufficient balance to attach %v cycles", cycles))
	}
	can.balance += queued.Cycles // return any previously attached amount
	can.balance -= cycles
	queued.Cycles = cycles
	return cc
}

// Run fn on the canister goroutine when the call's reply arrives.
// Without a reply handler the reply still settles the message; it
// is just not observed.
func (cc *CtxCall) OnReply(fn ReplyHandler) *CtxCall {
	cc.ctx.calls[cc.idx].onReply = fn
	return cc
}
