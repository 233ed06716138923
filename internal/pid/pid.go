// Package pid handles page identifiers. A pid names a page of the UI and is
// carried in the URL fragment, e.g. "#supply:basic-firstplay". The part
// before the first colon is the abstract page id (apid) that selects the
// page template; the rest parameterizes it.
package pid

import (
	"errors"
	"net/url"
	"strings"
)

const separator = ":"

var ErrNotURL = errors.New("pid: not a URL")

// PID is a parsed page identifier.
type PID struct {
	APID   string
	Params string
}

func (p PID) String() string {
	if p.Params == "" {
		return p.APID
	}
	return p.APID + separator + p.Params
}

// Parse splits pid at its first colon.
func Parse(pid string) PID {
	apid, params, _ := strings.Cut(pid, separator)
	return PID{APID: apid, Params: params}
}

// APIDFromPID returns pid unchanged when it has no parameters.
func APIDFromPID(pid string) string {
	return Parse(pid).APID
}

// PIDFromURL extracts the pid carried in the fragment of u.
func PIDFromURL(u *url.URL) (string, error) {
	if u == nil {
		return "", ErrNotURL
	}
	return u.Fragment, nil
}
