package api

import (
	"github.com/starford/grimoire/internal/clock"
	"github.com/starford/grimoire/internal/index"
	"github.com/starford/grimoire/internal/journal"
	"github.com/starford/grimoire/internal/session"
)

// PasswordRequest is the request body for enrolling or verifying.
type PasswordRequest struct {
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the gate state.
type SessionResponse struct {
	State      session.State `json:"state" example:"awaiting_verification" validate:"required"`
	UnlockedAt *clock.Stamp  `json:"unlocked_at,omitempty"`
}

// AppendRequest is the request body for appending an entry.
type AppendRequest struct {
	Content string `json:"content" example:"Dear diary, today was odd." validate:"required"`
}

// EntryResponse is a single entry.
type EntryResponse struct {
	Label string `json:"label" example:"Entry 1" validate:"required"`
	Seq   int    `json:"seq" example:"1" validate:"required"`
	Day   string `json:"day" example:"Monday" validate:"required"`
	Time  string `json:"time" example:"21:15:00" validate:"required"`
	Entry string `json:"entry" validate:"required"`
}

// EntryListResponse wraps the chronological entry listing.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// ReindexResponse reports a manual index rebuild.
type ReindexResponse struct {
	Indexed int `json:"indexed"`
	Removed int `json:"removed"`
	Total   int `json:"total"`
}

func toEntryResponse(r journal.Record) EntryResponse {
	return EntryResponse{
		Label: r.Label,
		Seq:   r.Seq,
		Day:   r.Entry.Day,
		Time:  r.Entry.Time,
		Entry: r.Entry.Entry,
	}
}
