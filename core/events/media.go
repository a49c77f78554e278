package events

const KindMediaStatusUpdated Kind = "media.status_updated"

type MediaStatusUpdated struct {
	Base
	Playing bool
	Blocked bool
	Status  string
}

func NewMediaStatusUpdated(playing, blocked bool, status string) MediaStatusUpdated {
	return MediaStatusUpdated{Base: NewBase(KindMediaStatusUpdated), Playing: playing, Blocked: blocked, Status: status}
}
