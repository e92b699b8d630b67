// examples_test
//
// Scenario-style tests exercising the replica the way application
// code uses it: a token ledger canister and a wallet canister that
// talks to it.
package replica

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func u64(v uint64) []byte {
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, v)
	return out
}

func parseU64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

// ledgerCanister keeps per-principal token balances. State lives
// in the handler closures; only the canister goroutine touches it.
func ledgerCanister(id Principal) *HandlerCanister {
	balances := make(map[Principal]uint64)

	return BuildCanister(id).
		WithInit(func(ctx *Ctx) {
			balances[ctx.Caller()] = 0
			ctx.Reply(nil)
		}).
		WithMethod("mint", func(ctx *Ctx) {
			to := Principal(ctx.Args())
			balances[to] += 100
			ctx.Reply(u64(balances[to]))
		}).
		WithMethod("transfer", func(ctx *Ctx) {
			// args: 8 bytes amount, rest is destination principal
			amount := parseU64(ctx.Args()[:8])
			to := Principal(ctx.Args()[8:])
			from := ctx.Caller()
			if balances[from] < amount {
				ctx.Reject("insufficient funds")
				return
			}
			balances[from] -= amount
			balances[to] += amount
			ctx.Reply(u64(balances[to]))
		}).
		WithMethod("balance_of", func(ctx *Ctx) {
			ctx.Reply(u64(balances[Principal(ctx.Args())]))
		}).
		MustBuild()
}

// walletCanister forwards payments through the ledger and reports
// the outcome back to its own caller.
func walletCanister(id Principal, ledger Principal) *HandlerCanister {
	return BuildCanister(id).
		WithMethod("pay", func(ctx *Ctx) {
			ctx.Call(ledger, "transfer").
				WithArg(ctx.Args()).
				OnReply(func(ctx *Ctx, reply CallReply) {
					if reply.Rejected() {
						ctx.Reject(reply.RejectMessage)
						return
					}
					ctx.Reply(reply.Payload)
				})
		}).
		MustBuild()
}

func TestLedgerScenario(t *testing.T) {
	ledger := ledgerCanister("ledger")
	wallet := walletCanister("wallet", "ledger")
	r := NewReplica(ledger, wallet)

	require.False(t, r.GetCanister("ledger").Init().Rejected())

	// fund the wallet on the ledger
	reply := r.GetCanister("ledger").NewCall("mint").WithArg([]byte("wallet")).Perform()
	require.False(t, reply.Rejected())
	require.Equal(t, uint64(100), parseU64(reply.Payload))

	// pay 40 to alice through the wallet
	args := append(u64(40), []byte("alice")...)
	reply = r.GetCanister("wallet").NewCall("pay").WithArg(args).Perform()
	require.False(t, reply.Rejected())
	require.Equal(t, uint64(40), parseU64(reply.Payload))

	// wallet kept the rest
	reply = r.GetCanister("ledger").NewCall("balance_of").WithArg([]byte("wallet")).Perform()
	require.Equal(t, uint64(60), parseU64(reply.Payload))

	// overdraft is a plain rejection, not a crash
	args = append(u64(500), []byte("alice")...)
	reply = r.GetCanister("wallet").NewCall("pay").WithArg(args).Perform()
	require.True(t, reply.Rejected())
	require.Equal(t, CanisterReject, reply.RejectCode)
	require.Contains(t, reply.RejectMessage, "insufficient funds")

	require.Equal(t, 0, r.PendingCalls())
}

// A call chain three canisters deep resolves back through each
// hop's reply continuation.
func TestChainedCalls(t *testing.T) {
	c := BuildCanister("c").
		WithMethod("leaf", func(ctx *Ctx) {
			ctx.Reply([]byte("c"))
		}).
		MustBuild()
	b := BuildCanister("b").
		WithMethod("mid", func(ctx *Ctx) {
			ctx.Call("c", "leaf").OnReply(func(ctx *Ctx, reply CallReply) {
				ctx.Reply(append(reply.Payload, 'b'))
			})
		}).
		MustBuild()
	a := BuildCanister("a").
		WithMethod("root", func(ctx *Ctx) {
			ctx.Call("b", "mid").OnReply(func(ctx *Ctx, reply CallReply) {
				ctx.Reply(append(reply.Payload, 'a'))
			})
		}).
		MustBuild()

	r := NewReplica(a, b, c)

	reply := r.GetCanister("a").NewCall("root").Perform()
	require.False(t, reply.Rejected())
	require.Equal(t, []byte("cba"), reply.Payload)
	require.Equal(t, 0, r.PendingCalls())
}
