// Package supply describes the set of kingdom cards used in one game.
package supply

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hatokurandom/hatokurandom/internal/cards"
	"github.com/hatokurandom/hatokurandom/pkg/base64xml"
)

// Size is the number of kingdom cards in a supply.
const Size = 10

var (
	ErrInvalidSupply = errors.New("invalid supply")
	ErrUnknownSupply = errors.New("unknown supply")
)

type Supply struct {
	SID   string `json:"sid"`
	Title string `json:"title"`
	CIDs  []int  `json:"cids"`
}

// Cards resolves the CIDs of s against the card table.
func (s *Supply) Cards() ([]*cards.Card, error) {
	result := make([]*cards.Card, 0, len(s.CIDs))
	for _, cid := range s.CIDs {
		c, err := cards.CardFromCID(cid)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

// Permalink encodes cids as a base64xml string, one character per card. The
// cids are sorted first so that a supply has exactly one permalink.
func Permalink(cids []int) (string, error) {
	sorted, err := normalize(cids)
	if err != nil {
		return "", err
	}
	code, err := base64xml.Encode(sorted)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidSupply, err)
	}
	return code, nil
}

// FromPermalink is the inverse of Permalink.
func FromPermalink(code string) (*Supply, error) {
	values, err := base64xml.Decode(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSupply, err)
	}
	sorted, err := normalize(values)
	if err != nil {
		return nil, err
	}
	canonical, err := base64xml.Encode(sorted)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSupply, err)
	}
	return &Supply{SID: canonical, Title: "Custom supply", CIDs: sorted}, nil
}

// New builds a supply from cids, using the permalink as its SID.
func New(cids []int) (*Supply, error) {
	code, err := Permalink(cids)
	if err != nil {
		return nil, err
	}
	return FromPermalink(code)
}

// Resolve looks up a predefined supply first and falls back to decoding sid
// as a permalink.
func Resolve(sid string) (*Supply, error) {
	if s, ok := Predefined(sid); ok {
		return s, nil
	}
	s, err := FromPermalink(sid)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownSupply, sid, err)
	}
	return s, nil
}

func normalize(cids []int) ([]int, error) {
	if len(cids) != Size {
		return nil, fmt.Errorf("%w: %d cards, want %d", ErrInvalidSupply, len(cids), Size)
	}
	seen := make(map[int]struct{}, len(cids))
	for _, cid := range cids {
		c, err := cards.CardFromCID(cid)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSupply, err)
		}
		if !c.Kingdom {
			return nil, fmt.Errorf("%w: %s is not a kingdom card", ErrInvalidSupply, c.Name)
		}
		if _, dup := seen[cid]; dup {
			return nil, fmt.Errorf("%w: duplicate cid %d", ErrInvalidSupply, cid)
		}
		seen[cid] = struct{}{}
	}
	sorted := append([]int(nil), cids...)
	sort.Ints(sorted)
	return sorted, nil
}
