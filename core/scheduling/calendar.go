package scheduling

import (
	"context"
	"time"
)

// Calendar is the external calendar collaborator.
type Calendar interface {
	Availability(ctx context.Context, query AvailabilityQuery) (Availability, error)
	Preferences(ctx context.Context) (Preferences, error)
	Book(ctx context.Context, request BookingRequest) (Booking, error)
}

type AvailabilityQuery struct {
	Start       time.Time
	End         time.Time
	TimeZone    string
	CalendarIDs []string
}

type Availability struct {
	Busy []Interval `json:"busy"`
	Free []Interval `json:"free"`
}

// Preferences is the caller's stored calendar selection.
type Preferences struct {
	SelectedIDs []string `json:"selectedIds"`
	DefaultID   string   `json:"defaultId"`
}

// AvailabilityIDs are the calendars checked when none were asked for.
func (p Preferences) AvailabilityIDs() []string {
	if len(p.SelectedIDs) > 0 {
		return append([]string(nil), p.SelectedIDs...)
	}
	if p.DefaultID != "" {
		return []string{p.DefaultID}
	}
	return nil
}

// BookingID is the calendar a meeting lands on when none was asked for.
func (p Preferences) BookingID() string {
	if p.DefaultID != "" {
		return p.DefaultID
	}
	if len(p.SelectedIDs) > 0 {
		return p.SelectedIDs[0]
	}
	return ""
}

type BookingRequest struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Start          string   `json:"start"`
	End            string   `json:"end"`
	TimeZone       string   `json:"timeZone"`
	Attendees      []string `json:"attendees"`
	Location       string   `json:"location,omitempty"`
	LeadID         string   `json:"leadId"`
	CalendarID     string   `json:"calendarId,omitempty"`
	ConferenceType string   `json:"conferenceType,omitempty"`
	Reminders      []int    `json:"reminders,omitempty"`
	OrganizerEmail string   `json:"organizerEmail,omitempty"`
}

type Booking struct {
	EventID     string `json:"eventId,omitempty"`
	HTMLLink    string `json:"htmlLink,omitempty"`
	HangoutLink string `json:"hangoutLink,omitempty"`
}

// Link prefers the conference link over the calendar entry.
func (b Booking) Link() string {
	if b.HangoutLink != "" {
		return b.HangoutLink
	}
	return b.HTMLLink
}
