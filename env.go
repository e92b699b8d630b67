// env
package replica

// EntryMode says which canister entry point an envelope is aimed at.
type EntryMode int

const (
	EntryInit EntryMode = iota
	EntryPreUpgrade
	EntryPostUpgrade
	EntryHeartbeat
	EntryUpdate
	EntryQuery
	EntryReplyCallback
	EntryCustomTask
)

func (e EntryMode) String() string {
	switch e {
	case EntryInit:
		return "init"
	case EntryPreUpgrade:
		return "pre_upgrade"
	case EntryPostUpgrade:
		return "post_upgrade"
	case EntryHeartbeat:
		return "heartbeat"
	case EntryUpdate:
		return "update"
	case EntryQuery:
		return "query"
	case EntryReplyCallback:
		return "reply_callback"
	case EntryCustomTask:
		return "custom_task"
	}
	return "unknown"
}

// Env is the resource envelope carried with every message: who is
// calling, how many cycles they attached, how many came back on a
// reply, and which method the message is aimed at. An Env is built
// once per message and never mutated afterwards; the With* methods
// return modified copies.
type Env struct {
	Caller          Principal
	Entry           EntryMode
	Method          string
	Args            []byte
	CyclesAvailable uint64
	CyclesRefunded  uint64
}

// Envelope for the canonical "initialize" lifecycle request.
func InitEnv() Env {
	return Env{Caller: anonymous, Entry: EntryInit}
}

// Envelope for the canonical "pre-upgrade" lifecycle request.
func PreUpgradeEnv() Env {
	return Env{Caller: anonymous, Entry: EntryPreUpgrade}
}

// Envelope for the canonical "post-upgrade" lifecycle request.
func PostUpgradeEnv() Env {
	return Env{Caller: anonymous, Entry: EntryPostUpgrade}
}

// Envelope for the canonical "heartbeat" lifecycle request.
func HeartbeatEnv() Env {
	return Env{Caller: anonymous, Entry: EntryHeartbeat}
}

// Envelope for an update call to the named method.
func UpdateEnv(method string, args []byte, cycles uint64) Env {
	return Env{
		Caller:          anonymous,
		Entry:           EntryUpdate,
		Method:          method,
		Args:            args,
		CyclesAvailable: cycles,
	}
}

// Envelope for a reply callback carrying the cycles the callee
// sent back.
func replyEnv(caller Principal, refunded uint64) Env {
	return Env{Caller: caller, Entry: EntryReplyCallback, CyclesRefunded: refunded}
}

// Copy of the envelope with the caller replaced.
func (e Env) WithCaller(caller Principal) Env {
	e.Caller = caller
	return e
}

// Copy of the envelope with the arguments replaced.
func (e Env) WithArgs(args []byte) Env {
	e.Args = args
	return e
}

// Copy of the envelope with the attached cycles replaced.
func (e Env) WithCycles(cycles uint64) Env {
	e.CyclesAvailable = cycles
	return e
}
