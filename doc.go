// replica project doc.go

/*
The replica package provides a local, in-process simulator for an
actor-style canister environment. It hosts any number of canisters
inside one replica so developers can exercise inter-canister call
graphs, reentrancy, and failure modes without a multi-node
deployment.

Canisters deal with one message at a time, so canister code does
not need locking or synchronization. Each canister owns its state
exclusively: the state is moved into the canister's goroutine at
registration and from then on every interaction travels through
its mailbox. Mailboxes are unbounded FIFO queues - senders never
block, they only wait on the outcome of a call they chose to
await.

All routing goes through the replica control loop. It owns the
registry mapping canister identity to mailbox, forwards requests
and replies, and synthesizes a destination-invalid rejection with
a full cycle refund when a destination does not exist, so a caller
always receives exactly one outcome per call.

Inter-canister calls are correlated by RequestID. When a canister
issues a call, an ephemeral watcher awaits the callee's outcome
and reinjects it into the calling canister's mailbox as an
ordinary reply message, preserving the mailbox's total order and
allowing reentrant call patterns.

The package also provides a batteries layer: a HandlerCanister
built from a fluent CanisterBuilder with a method dispatch table,
lifecycle hooks (init, pre-upgrade, post-upgrade, heartbeat),
cycle accept/refund accounting, and reply continuations, plus a
CallBuilder for external callers and a pub-sub system bus
publishing lifecycle and routing events.
*/
package replica
