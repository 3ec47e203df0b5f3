package sessions

import "time"

// Record is a session normalized from one feed node. Start is always set.
type Record struct {
	ActionID string
	Start    time.Time
	End      *time.Time
	Location string
	Status   string
	Links    Links
}

func (r Record) Session() Session {
	session := Session{
		ActionID: optional(r.ActionID),
		StartISO: FormatTimestamp(r.Start),
		Location: optional(r.Location),
		Status:   optional(r.Status),
		Links:    r.Links,
	}

	if r.End != nil {
		endISO := FormatTimestamp(*r.End)
		session.EndISO = &endISO
	}

	return session
}

type Session struct {
	ActionID *string `json:"idAccao"`
	StartISO string  `json:"startISO"`
	EndISO   *string `json:"endISO"`
	Location *string `json:"location"`
	Status   *string `json:"status"`
	Links    Links   `json:"links"`
}

type Response struct {
	Ref      string    `json:"ref"`
	Count    int       `json:"count"`
	Sessions []Session `json:"sessions"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
