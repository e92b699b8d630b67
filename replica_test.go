// replica_test
package replica

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func echoCanister(id Principal) *HandlerCanister {
	return BuildCanister(id).
		WithMethod("echo", func(ctx *Ctx) {
			ctx.Reply(ctx.Args())
		}).
		MustBuild()
}

func TestDuplicateRegistrationPanics(t *testing.T) {
	r := NewReplica(echoCanister("a"))

	require.Panics(t, func() {
		r.AddCanister(echoCanister("a"))
	})
}

func TestUnknownDestinationRejected(t *testing.T) {
	r := NewReplica()

	reply := r.NewCall(NewPrincipal(), "anything").
		WithPayment(500).
		Perform()

	require.True(t, reply.Rejected())
	require.Equal(t, DestinationInvalid, reply.RejectCode)
	require.Equal(t, uint64(500), reply.CyclesRefunded)
	require.Contains(t, reply.RejectMessage, "does not exist")
}

// Every cycle attached to an unroutable call comes back; nothing
// leaks, nothing duplicates.
func TestRefundConservation(t *testing.T) {
	r := NewReplica()

	var attached, refunded uint64
	for i := 0; i < 200; i++ {
		cycles := uint64(i * 13)
		attached += cycles
		reply := r.NewCall(NewPrincipal(), "m").WithPayment(cycles).Perform()
		require.Equal(t, DestinationInvalid, reply.RejectCode)
		refunded += reply.CyclesRefunded
	}
	require.Equal(t, attached, refunded)
}

// A canister-issued call to a missing destination resolves through
// the ordinary reply path with the full refund, and leaves nothing
// pending behind.
func TestCanisterCallToMissingDestination(t *testing.T) {
	missing := NewPrincipal()
	got := make(chan CallReply, 1)

	a := BuildCanister("a").
		WithBalance(1000).
		WithMethod("probe", func(ctx *Ctx) {
			ctx.Call(missing, "anything").
				WithPayment(100).
				OnReply(func(ctx *Ctx, reply CallReply) {
					got <- reply
					ctx.Reply(nil)
				})
		}).
		MustBuild()
	r := NewReplica(a)

	outcome := r.GetCanister("a").NewCall("probe").Perform()
	require.False(t, outcome.Rejected())

	reply := <-got
	require.Equal(t, DestinationInvalid, reply.RejectCode)
	require.Equal(t, uint64(100), reply.CyclesRefunded)
	require.Equal(t, 0, r.PendingCalls())
}

// Replica with canisters {a, b}: submitting the canonical
// initialize request to a succeeds with no refund and no residual
// pending calls.
func TestLifecycleInit(t *testing.T) {
	initialized := make(chan Principal, 1)

	a := BuildCanister("a").
		WithInit(func(ctx *Ctx) {
			initialized <- ctx.Id()
			ctx.Reply(nil)
		}).
		MustBuild()
	b := echoCanister("b")
	r := NewReplica(a, b)

	reply := r.GetCanister("a").Init()
	require.False(t, reply.Rejected())
	require.Equal(t, uint64(0), reply.CyclesRefunded)
	require.Equal(t, Principal("a"), <-initialized)
	require.Equal(t, 0, r.PendingCalls())
}

// Lifecycle hooks are optional: a canister that defines none still
// answers all four canonical requests.
func TestLifecycleHooksOptional(t *testing.T) {
	r := NewReplica(echoCanister("bare"))
	h := r.GetCanister("bare")

	for _, reply := range []CallReply{h.Init(), h.PreUpgrade(), h.PostUpgrade(), h.Heartbeat()} {
		require.False(t, reply.Rejected())
		require.Equal(t, uint64(0), reply.CyclesRefunded)
	}
}

func TestSystemBusEvents(t *testing.T) {
	r := NewReplica()
	events := make(chan BusEvent, 16)
	require.NoError(t, r.SystemBus().Subscribe(events, "", nil))

	r.AddCanister(echoCanister("watched"))
	select {
	case ev := <-events:
		require.Equal(t, CanisterLifecycle, ev.Topic)
		require.Contains(t, fmt.Sprint(ev.Data), "watched")
	case <-time.After(time.Second):
		t.Fatal("no lifecycle event published")
	}

	r.NewCall(NewPrincipal(), "m").Perform()
	select {
	case ev := <-events:
		require.Equal(t, RoutingProblem, ev.Topic)
		require.Contains(t, fmt.Sprint(ev.Data), "does not exist")
	case <-time.After(time.Second):
		t.Fatal("no routing problem published")
	}
}

// While a callee stalls, the snapshot shows who is waiting on
// whom; once it answers, the table drains.
func TestPendingSnapshotDuringStalledCall(t *testing.T) {
	gate := make(chan struct{})
	sink := BuildCanister("sink").
		WithMethod("hold", func(ctx *Ctx) {
			<-gate
			ctx.Reply(nil)
		}).
		MustBuild()
	a := BuildCanister("a").
		WithMethod("start", func(ctx *Ctx) {
			ctx.Call("sink", "hold").OnReply(func(ctx *Ctx, reply CallReply) {
				ctx.Reply(nil)
			})
		}).
		MustBuild()
	r := NewReplica(a, sink)

	outcome := r.GetCanister("a").NewCall("start").PerformAsync()

	deadline := time.Now().Add(time.Second)
	for r.PendingCalls() != 1 {
		require.True(t, time.Now().Before(deadline), "call never became pending")
		time.Sleep(time.Millisecond)
	}
	for _, pc := range r.PendingSnapshot() {
		require.Equal(t, Principal("a"), pc.Origin)
		require.Equal(t, Principal("sink"), pc.Callee)
		require.False(t, pc.Issued.IsZero())
	}

	close(gate)
	require.False(t, (<-outcome).Rejected())
	require.Equal(t, 0, r.PendingCalls())
}

// A bus filter that refuses a payload keeps it off the bus
// entirely.
func TestSystemBusFilter(t *testing.T) {
	r := BuildReplica().
		WithBusFilter(func(data interface{}) bool { return false }).
		Run()
	events := make(chan BusEvent, 16)
	require.NoError(t, r.SystemBus().Subscribe(events, "", nil))

	require.Error(t, r.SystemBus().Publish(CanisterLifecycle, "dropped"))
	r.AddCanister(echoCanister("quiet"))

	select {
	case ev := <-events:
		t.Fatalf("filtered event was delivered: %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSystemBusUnsubscribe(t *testing.T) {
	r := NewReplica()
	events := make(chan BusEvent, 16)
	require.NoError(t, r.SystemBus().Subscribe(events, "", nil))

	r.AddCanister(echoCanister("first"))
	select {
	case ev := <-events:
		require.Equal(t, CanisterLifecycle, ev.Topic)
	case <-time.After(time.Second):
		t.Fatal("no event before unsubscribe")
	}

	r.SystemBus().Unsubscribe(events)
	r.AddCanister(echoCanister("second"))
	select {
	case ev := <-events:
		t.Fatalf("event delivered after unsubscribe: %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGetCanisterHandleIsNonOwning(t *testing.T) {
	r := NewReplica(echoCanister("a"))

	// any number of handles may exist and be discarded
	for i := 0; i < 3; i++ {
		h := r.GetCanister("a")
		require.Equal(t, Principal("a"), h.Id())
		reply := h.NewCall("echo").WithArg([]byte{byte(i)}).Perform()
		require.Equal(t, []byte{byte(i)}, reply.Payload)
	}
}
