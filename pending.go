// pending
package replica

import (
	"sync"
	"time"
)

// PendingCall describes one call that has been routed but whose
// outcome has not been delivered yet.
type PendingCall struct {
	Origin Principal
	Callee Principal
	Issued time.Time
}

// pendingTable tracks the outstanding inter-canister calls: an
// entry is recorded when the canister loop routes a call and
// retired by the watcher once the outcome has been reinjected.
// Purely diagnostic; routing never reads it. There is no purge
// tick because calls have no deadline - an entry for a stalled
// callee stays visible, which is exactly what you want when
// debugging a hung call graph.
type pendingTable struct {
	sync.Mutex
	calls map[RequestID]PendingCall
}

func newPendingTable() *pendingTable {
	return &pendingTable{calls: make(map[RequestID]PendingCall)}
}

func (pt *pendingTable) record(id RequestID, origin, callee Principal) {
	pt.Lock()
	defer pt.Unlock()
	pt.calls[id] = PendingCall{Origin: origin, Callee: callee, Issued: time.Now()}
}

func (pt *pendingTable) retire(id RequestID) {
	pt.Lock()
	defer pt.Unlock()
	delete(pt.calls, id)
}

func (pt *pendingTable) count() int {
	pt.Lock()
	defer pt.Unlock()
	return len(pt.calls)
}

func (pt *pendingTable) snapshot() map[RequestID]PendingCall {
	pt.Lock()
	defer pt.Unlock()
	out := make(map[RequestID]PendingCall, len(pt.calls))
	for id, pc := range pt.calls {
		out[id] = pc
	}
	return out
}
