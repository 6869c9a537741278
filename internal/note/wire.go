package note

import "strings"

// Mirror payload framing. The header line marks content written by
// sidenote; payloads without it are freeform text written by other
// tools and decode as a bare body.
const (
	Header     = "sidenote/1"
	titleDelim = "-- title --"
	bodyDelim  = "-- body --"
)

// Encode frames a note for the side-channel mirror.
func Encode(n *Note) string {
	var b strings.Builder
	b.WriteString(Header)
	b.WriteByte('\n')
	b.WriteString(titleDelim)
	b.WriteByte('\n')
	b.WriteString(n.Title)
	b.WriteByte('\n')
	b.WriteString(bodyDelim)
	b.WriteByte('\n')
	b.WriteString(n.Body)
	return b.String()
}

// Decode parses a mirror payload into title and body.
// A payload without the header is legacy content: the whole payload
// becomes the body and the title is empty.
func Decode(payload string) (title, body string) {
	rest, ok := strings.CutPrefix(payload, Header+"\n")
	if !ok {
		return "", payload
	}

	rest, ok = strings.CutPrefix(rest, titleDelim+"\n")
	if !ok {
		// Header present but framing broken: salvage as body.
		return "", rest
	}

	// Title runs until the body delimiter line; body is everything after.
	marker := "\n" + bodyDelim + "\n"
	if idx := strings.Index(rest, marker); idx >= 0 {
		return rest[:idx], rest[idx+len(marker):]
	}

	// No body section.
	return strings.TrimSuffix(rest, "\n"), ""
}
