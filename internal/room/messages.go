package room

// Target selects which players should receive an outbound message.
type Target int

const (
	// ToAll broadcasts to every player in the room.
	ToAll Target = iota
	// ToAllExcept broadcasts to every player except Except.
	ToAllExcept
	// ToOne delivers privately to PlayerID.
	ToOne
)

// OutMsg is one outbound protocol message paired with its delivery
// target. Room operations return a slice of these; the caller (the room
// container, per SPEC_FULL.md §4.3) is responsible for actually posting
// each to the right player queues.
type OutMsg struct {
	Target   Target
	PlayerID uint32 // meaningful when Target == ToOne
	Except   uint32 // meaningful when Target == ToAllExcept
	Payload  any
}

func broadcast(payload any) OutMsg {
	return OutMsg{Target: ToAll, Payload: payload}
}

func broadcastExcept(except uint32, payload any) OutMsg {
	return OutMsg{Target: ToAllExcept, Except: except, Payload: payload}
}

func toOne(playerID uint32, payload any) OutMsg {
	return OutMsg{Target: ToOne, PlayerID: playerID, Payload: payload}
}
