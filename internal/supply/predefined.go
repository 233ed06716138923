package supply

import (
	"sort"
	"strings"
)

var predefined = map[string]Supply{
	"basic-firstplay": {
		SID:   "basic-firstplay",
		Title: "First play",
		CIDs:  []int{1, 2, 4, 6, 7, 11, 12, 13, 18, 21},
	},
	"basic-guide": {
		SID:   "basic-guide",
		Title: "Guided tour",
		CIDs:  []int{1, 3, 5, 8, 10, 14, 15, 17, 20, 22},
	},
	"basic-witchcraft": {
		SID:   "basic-witchcraft",
		Title: "Witchcraft",
		CIDs:  []int{1, 2, 9, 10, 14, 16, 17, 19, 23, 24},
	},
	"fareast-intro": {
		SID:   "fareast-intro",
		Title: "Far east introduction",
		CIDs:  []int{1, 2, 6, 27, 28, 29, 30, 31, 32, 34},
	},
}

// Predefined returns a copy of the named supply.
func Predefined(sid string) (*Supply, bool) {
	s, ok := predefined[sid]
	if !ok {
		return nil, false
	}
	s.CIDs = append([]int(nil), s.CIDs...)
	return &s, true
}

// PredefinedSIDs lists predefined supplies whose SID starts with prefix,
// e.g. "basic".
func PredefinedSIDs(prefix string) []string {
	var sids []string
	for sid := range predefined {
		if strings.HasPrefix(sid, prefix) {
			sids = append(sids, sid)
		}
	}
	sort.Strings(sids)
	return sids
}
