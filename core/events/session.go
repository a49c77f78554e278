package events

const (
	KindStatusUpdated    Kind = "session.status_updated"
	KindInstructionsSent Kind = "session.instructions_sent"
)

// StatusUpdated carries a short human-readable status line.
type StatusUpdated struct {
	Base
	Status string
}

func NewStatusUpdated(status string) StatusUpdated {
	return StatusUpdated{Base: NewBase(KindStatusUpdated), Status: status}
}

type InstructionsSent struct {
	Base
	Version int
}

func NewInstructionsSent(version int) InstructionsSent {
	return InstructionsSent{Base: NewBase(KindInstructionsSent), Version: version}
}
