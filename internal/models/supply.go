package models

import (
	"time"

	"github.com/hatokurandom/hatokurandom/internal/cards"
)

// SavedSupply is a supply persisted by the API.
type SavedSupply struct {
	ID        int64     `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	Title     string    `json:"title" db:"title"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateSupplyRequest asks for explicit cards, a phrase-derived supply or, when
// both are empty, a random one.
type CreateSupplyRequest struct {
	CIDs   []int  `json:"cids,omitempty"`
	Phrase string `json:"phrase,omitempty"`
	Title  string `json:"title,omitempty"`
}

type SupplyResponse struct {
	SID       string        `json:"sid"`
	Title     string        `json:"title"`
	Permalink string        `json:"permalink"`
	PID       string        `json:"pid"`
	Cards     []*cards.Card `json:"cards"`
	Views     int64         `json:"views"`
}

type EncodeResponse struct {
	Text string `json:"text"`
}

type DecodeResponse struct {
	Values []int `json:"values"`
}
