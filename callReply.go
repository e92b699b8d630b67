// callReply
package replica

// RejectionCode categorizes why a call was rejected. The numeric
// values are fixed wire values and must not be reordered.
type RejectionCode int

const (
	NoError RejectionCode = iota
	SysFatal
	SysTransient
	DestinationInvalid
	CanisterReject
	CanisterError
)

func (c RejectionCode) String() string {
	switch c {
	case NoError:
		return "no_error"
	case SysFatal:
		return "sys_fatal"
	case SysTransient:
		return "sys_transient"
	case DestinationInvalid:
		return "destination_invalid"
	case CanisterReject:
		return "canister_reject"
	case CanisterError:
		return "canister_error"
	}
	return "unknown"
}

// CallReply is the terminal outcome of one call: either a payload,
// or a categorized rejection. Either way it carries the cycles
// refunded to the caller - the amount is authoritative per reply
// and is never recomputed from other state.
type CallReply struct {
	Payload        []byte
	RejectCode     RejectionCode
	RejectMessage  string
	CyclesRefunded uint64
}

// Build a successful reply.
func ReplyData(payload []byte, refund uint64) CallReply {
	return CallReply{Payload: payload, CyclesRefunded: refund}
}

// Build a rejection.
func ReplyReject(code RejectionCode, message string, refund uint64) CallReply {
	return CallReply{RejectCode: code, RejectMessage: message, CyclesRefunded: refund}
}

// Was the call rejected?
func (r CallReply) Rejected() bool {
	return r.RejectCode != NoError
}

// Turn the reply into the mailbox message that delivers it back to
// the canister that issued the call.
func (r CallReply) toMessage(id RequestID) ReplyMessage {
	return ReplyMessage{RequestID: id, Reply: r}
}
