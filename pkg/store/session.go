package store

import "time"

// Turn is one completed question/answer exchange within a session.
type Turn struct {
	Query     string    `json:"query"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionHistory is the ordered conversation state for one session id.
// Turns are appended in completion order, oldest first.
type SessionHistory struct {
	ID    string `json:"id"`
	Turns []Turn `json:"turns"`
}
