// replicaMsg
package replica

const (
	MsgTypeTask = iota
	MsgTypeRequest
	MsgTypeReply
)

// All messages delivered into a canister mailbox have this
// structure. There are exactly three shapes: an ad hoc task to run
// on the canister's own goroutine, a structured request, and a
// reply to a call the canister issued earlier.
type Message interface {
	Type() int
	// Cycles attached to this message by its sender. Replies carry
	// none; their cycles travel inside the CallReply.
	AttachedCycles() uint64
}

// TaskMessage asks the canister to run an opaque function on its
// own goroutine. The function is called exactly once and must not
// be retained afterwards.
type TaskMessage struct {
	RequestID RequestID
	Task      func()
	Env       Env
}

// RequestMessage is a structured inbound request: lifecycle
// requests and inter-canister calls both travel this way.
type RequestMessage struct {
	RequestID RequestID
	Env       Env
}

// ReplyMessage delivers the outcome of a call the receiving
// canister issued earlier, tagged with that call's RequestID.
type ReplyMessage struct {
	RequestID RequestID
	Reply     CallReply
}

func (m TaskMessage) Type() int    { return MsgTypeTask }
func (m RequestMessage) Type() int { return MsgTypeRequest }
func (m ReplyMessage) Type() int   { return MsgTypeReply }

func (m TaskMessage) AttachedCycles() uint64    { return m.Env.CyclesAvailable }
func (m RequestMessage) AttachedCycles() uint64 { return m.Env.CyclesAvailable }
func (m ReplyMessage) AttachedCycles() uint64   { return 0 }

// delivery pairs a message with the channel its sender is
// watching for the outcome, if any.
type delivery struct {
	msg         Message
	replySender chan<- CallReply
}
