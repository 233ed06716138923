// Package cards holds the card table. A card is identified by its CID, which
// is also its index in Cards and always fits in a single 6-bit value so that
// supplies can be written as base64xml strings.
package cards

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	ExpansionBasic   = "basic"
	ExpansionFarEast = "fareast"
)

var ErrInvalidCID = errors.New("invalid cid")

type Card struct {
	CID       int    `json:"cid"`
	Name      string `json:"name"`
	Cost      int    `json:"cost"`
	Link      int    `json:"link"`
	Expansion string `json:"expansion"`
	Kingdom   bool   `json:"kingdom"`
}

// Cards is indexed by CID. Cards[0] is a placeholder that never appears in a
// supply.
var Cards = []Card{
	{0, "(placeholder)", 0, 0, "", false},

	{1, "Farming Village", 1, 2, ExpansionBasic, true},
	{2, "Courier", 2, 0, ExpansionBasic, true},
	{3, "Donation", 2, 1, ExpansionBasic, true},
	{4, "Loan", 3, 0, ExpansionBasic, true},
	{5, "Bounty Hunter", 3, 0, ExpansionBasic, true},
	{6, "City Walls", 3, 1, ExpansionBasic, true},
	{7, "Lesser Noble", 3, 1, ExpansionBasic, true},
	{8, "Hideout", 3, 1, ExpansionBasic, true},
	{9, "Salvage", 3, 1, ExpansionBasic, true},
	{10, "Tally", 3, 1, ExpansionBasic, true},
	{11, "Infantry Battalion", 3, 1, ExpansionBasic, true},
	{12, "Military Supply", 4, 1, ExpansionBasic, true},
	{13, "Wandering Bard", 4, 2, ExpansionBasic, true},
	{14, "Alchemist", 4, 1, ExpansionBasic, true},
	{15, "Librarian", 4, 1, ExpansionBasic, true},
	{16, "Cursing Witch", 4, 1, ExpansionBasic, true},
	{17, "Purveyor", 4, 2, ExpansionBasic, true},
	{18, "Imperial Guard", 5, 1, ExpansionBasic, true},
	{19, "Battering Ram", 5, 0, ExpansionBasic, true},
	{20, "Buried Treasure", 5, 0, ExpansionBasic, true},
	{21, "Court Maid", 5, 1, ExpansionBasic, true},
	{22, "Adventurer", 5, 1, ExpansionBasic, true},
	{23, "Stargazer", 6, 2, ExpansionBasic, true},
	{24, "Library", 6, 0, ExpansionBasic, true},
	{25, "Apprentice Maid", 0, 0, ExpansionBasic, false},
	{26, "Duchy", 8, 0, ExpansionBasic, false},

	{27, "Rice Paddy", 1, 2, ExpansionFarEast, true},
	{28, "Fox Shrine", 2, 1, ExpansionFarEast, true},
	{29, "Ninja", 3, 0, ExpansionFarEast, true},
	{30, "Tea Ceremony", 3, 1, ExpansionFarEast, true},
	{31, "Samurai", 4, 0, ExpansionFarEast, true},
	{32, "Merchant Guild", 4, 2, ExpansionFarEast, true},
	{33, "Onmyoji", 4, 1, ExpansionFarEast, true},
	{34, "Castle Town", 5, 2, ExpansionFarEast, true},
	{35, "Shogunate", 6, 1, ExpansionFarEast, true},
}

// CardFromCID returns the table entry for cid. The returned pointer refers to
// the entry in Cards itself.
func CardFromCID(cid int) (*Card, error) {
	if cid < 0 || cid >= len(Cards) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCID, cid)
	}
	return &Cards[cid], nil
}

// ParseCID parses a decimal CID and checks that it names a card.
func ParseCID(s string) (int, error) {
	cid, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCID, s)
	}
	if _, err := CardFromCID(cid); err != nil {
		return 0, err
	}
	return cid, nil
}

// KingdomCards lists the kingdom cards of an expansion, or of every
// expansion when expansion is empty.
func KingdomCards(expansion string) []*Card {
	var result []*Card
	for i := range Cards {
		c := &Cards[i]
		if !c.Kingdom {
			continue
		}
		if expansion != "" && c.Expansion != expansion {
			continue
		}
		result = append(result, c)
	}
	return result
}
