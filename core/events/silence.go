package events

const (
	KindSilenceStarted Kind = "silence.started"
	KindSilenceTick    Kind = "silence.tick"
	KindSilenceEnded   Kind = "silence.ended"
)

// SilenceStarted opens a silence window of Seconds.
type SilenceStarted struct {
	Base
	Seconds int
}

func NewSilenceStarted(seconds int) SilenceStarted {
	return SilenceStarted{Base: NewBase(KindSilenceStarted), Seconds: seconds}
}

type SilenceTick struct {
	Base
	Remaining int
}

func NewSilenceTick(remaining int) SilenceTick {
	return SilenceTick{Base: NewBase(KindSilenceTick), Remaining: remaining}
}

// SilenceEnded closes the window. Expired is false when it was stopped early.
type SilenceEnded struct {
	Base
	Expired bool
}

func NewSilenceEnded(expired bool) SilenceEnded {
	return SilenceEnded{Base: NewBase(KindSilenceEnded), Expired: expired}
}
