package events

const KindHostSignal Kind = "host.signal"

// HostSignalName is the name host-mode observers key on.
type HostSignalName string

const (
	HostStart     HostSignalName = "hostStart"
	HostStop      HostSignalName = "hostStop"
	HostInviteNow HostSignalName = "hostInviteNow"
	HostClosing   HostSignalName = "hostClosing"
	HostResume    HostSignalName = "hostResume"
)

type HostSignal struct {
	Base
	Signal HostSignalName
}

func NewHostSignal(signal HostSignalName) HostSignal {
	return HostSignal{Base: NewBase(KindHostSignal), Signal: signal}
}
