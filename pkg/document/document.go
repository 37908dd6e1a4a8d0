// Package document tokenizes persisted notes into their zones and encodes
// header block values.
//
// A note is laid out as:
//
//	---
//	key: value
//	---
//	<preamble>
//	%%shelfmark-content-start%%
//	<machine body, optionally split into member blocks>
//	<!-- shelfmark-end -->
//	<personal zone>
//
// Everything after the end marker belongs to the user and is carried over
// byte for byte.
package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agentstation/shelfmark/pkg/errors"
)

// Markers.
const (
	HeaderFence   = "---"
	ContentStart  = "%%shelfmark-content-start%%"
	ContentEnd    = "<!-- shelfmark-end -->"
	PersonalStart = "%%shelfmark-personal%%"

	memberStartPrefix = "%%shelfmark-book-start-"
	memberEndPrefix   = "%%shelfmark-book-end-"
	markerSuffix      = "%%"
)

// MemberStart returns the opening marker of a member block.
func MemberStart(id int, sortKey float64) string {
	return memberStartPrefix + memberKey(id, sortKey) + markerSuffix
}

// MemberEnd returns the closing marker of a member block.
func MemberEnd(id int, sortKey float64) string {
	return memberEndPrefix + memberKey(id, sortKey) + markerSuffix
}

func memberKey(id int, sortKey float64) string {
	return strconv.Itoa(id) + "-" + strconv.FormatFloat(sortKey, 'f', -1, 64)
}

// Member is one per-book block of a grouped note.
type Member struct {
	ID       int
	SortKey  float64
	Content  string
	Personal string
}

// Parsed is a tokenized note.
type Parsed struct {
	Header   Header
	Preamble string
	Body     string
	Members  []Member
	Trailer  string
	// HasBody reports whether both content markers were found in order.
	HasBody bool
	// HasEnd reports whether the end marker was found. Without a start
	// marker, Body holds everything between the header and the end marker
	// and Preamble is empty.
	HasEnd bool
}

type line struct {
	text  string
	start int
	end   int // offset just past the line terminator
}

func splitLines(s string) []line {
	var out []line
	pos := 0
	for pos < len(s) {
		i := strings.IndexByte(s[pos:], '\n')
		if i < 0 {
			out = append(out, line{text: s[pos:], start: pos, end: len(s)})
			break
		}
		text := strings.TrimSuffix(s[pos:pos+i], "\r")
		out = append(out, line{text: text, start: pos, end: pos + i + 1})
		pos += i + 1
	}
	return out
}

// Parse tokenizes content. A note without a header block parses with an
// empty header. Missing content markers leave HasBody false and put the
// remaining text in Preamble.
func Parse(content string) (*Parsed, error) {
	lines := splitLines(content)
	p := &Parsed{}

	i := 0
	bodyFrom := 0
	if len(lines) > 0 && lines[0].text == HeaderFence {
		closed := false
		for j := 1; j < len(lines); j++ {
			if lines[j].text == HeaderFence {
				h, err := parseHeader(lines[1:j])
				if err != nil {
					return nil, err
				}
				p.Header = h
				i = j + 1
				bodyFrom = lines[j].end
				closed = true
				break
			}
		}
		if !closed {
			return nil, errors.NewParseError("header", "", "unterminated header block", nil)
		}
	}

	startLine, endLine := -1, -1
	for j := i; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j].text)
		if startLine < 0 && t == ContentStart {
			startLine = j
			continue
		}
		if startLine >= 0 && t == ContentEnd {
			endLine = j
			break
		}
	}

	if startLine < 0 {
		for j := i; j < len(lines); j++ {
			if strings.TrimSpace(lines[j].text) == ContentEnd {
				p.HasEnd = true
				p.Body = content[bodyFrom:lines[j].start]
				p.Trailer = trailerAfter(content, lines[j])
				return p, nil
			}
		}
	}
	if startLine < 0 || endLine < 0 {
		p.Preamble = content[bodyFrom:]
		return p, nil
	}

	p.HasBody = true
	p.HasEnd = true
	p.Preamble = content[bodyFrom:lines[startLine].start]
	p.Body = content[lines[startLine].end:lines[endLine].start]
	p.Trailer = trailerAfter(content, lines[endLine])

	members, err := parseMembers(lines[startLine+1:endLine], content)
	if err != nil {
		return nil, err
	}
	p.Members = members
	return p, nil
}

// trailerAfter returns the text following the end marker on l.
func trailerAfter(content string, l line) string {
	marker := l.start + strings.Index(content[l.start:], ContentEnd)
	return content[marker+len(ContentEnd):]
}

func parseMembers(lines []line, content string) ([]Member, error) {
	var out []Member
	for i := 0; i < len(lines); i++ {
		t := strings.TrimSpace(lines[i].text)
		if !strings.HasPrefix(t, memberStartPrefix) || !strings.HasSuffix(t, markerSuffix) {
			continue
		}
		key := strings.TrimSuffix(strings.TrimPrefix(t, memberStartPrefix), markerSuffix)
		id, sortKey, err := parseMemberKey(key)
		if err != nil {
			return nil, err
		}
		want := memberEndPrefix + key + markerSuffix
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j].text) != want {
				continue
			}
			body := strings.TrimSpace(content[lines[i].end:lines[j].start])
			out = append(out, Member{ID: id, SortKey: sortKey, Content: body, Personal: personalOf(body)})
			i = j
			closed = true
			break
		}
		if !closed {
			return nil, errors.NewParseError("member", "", fmt.Sprintf("member block %s is not closed", key), nil)
		}
	}
	return out, nil
}

func parseMemberKey(key string) (int, float64, error) {
	idPart, sortPart, ok := strings.Cut(key, "-")
	if !ok {
		return 0, 0, errors.NewParseError("member", "", fmt.Sprintf("malformed member key %q", key), nil)
	}
	id, err := strconv.Atoi(idPart)
	if err != nil {
		return 0, 0, errors.NewParseError("member", "", fmt.Sprintf("malformed member id %q", idPart), err)
	}
	sortKey, err := strconv.ParseFloat(sortPart, 64)
	if err != nil {
		return 0, 0, errors.NewParseError("member", "", fmt.Sprintf("malformed member sort key %q", sortPart), err)
	}
	return id, sortKey, nil
}

// personalOf returns the nested personal sub-zone of a member block.
func personalOf(content string) string {
	_, after, ok := strings.Cut(content, PersonalStart)
	if !ok {
		return ""
	}
	return strings.TrimSpace(after)
}

// Member returns the parsed block for id.
func (p *Parsed) Member(id int) (Member, bool) {
	for _, m := range p.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}
