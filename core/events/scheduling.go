package events

const (
	KindAvailabilityChecked Kind = "scheduling.availability_checked"
	KindMeetingScheduled    Kind = "scheduling.meeting_scheduled"
)

type AvailabilityChecked struct {
	Base
	StartISO string
	EndISO   string
	Booked   bool
	Overlaps int
	// SuggestedStartISO and SuggestedEndISO are empty when no alternative was
	// found or none was needed.
	SuggestedStartISO string
	SuggestedEndISO   string
}

func NewAvailabilityChecked(startISO, endISO string, booked bool, overlaps int, suggestedStartISO, suggestedEndISO string) AvailabilityChecked {
	return AvailabilityChecked{
		Base:              NewBase(KindAvailabilityChecked),
		StartISO:          startISO,
		EndISO:            endISO,
		Booked:            booked,
		Overlaps:          overlaps,
		SuggestedStartISO: suggestedStartISO,
		SuggestedEndISO:   suggestedEndISO,
	}
}

type MeetingScheduled struct {
	Base
	Title    string
	StartISO string
	EndISO   string
	Link     string
}

func NewMeetingScheduled(title, startISO, endISO, link string) MeetingScheduled {
	return MeetingScheduled{Base: NewBase(KindMeetingScheduled), Title: title, StartISO: startISO, EndISO: endISO, Link: link}
}
