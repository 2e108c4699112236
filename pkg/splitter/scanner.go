package splitter

import "strings"

// Line is a single scanned input line plus the state the splitter needs to
// classify it.
type Line struct {
	Raw    string // exact slice of the input, line terminator included
	Text   string // Raw without its "\n" or "\r\n" terminator
	Number int    // 1-based line number
	// InFence is true for lines inside a fenced code block, including the
	// fence delimiter lines themselves. Such lines are never headings.
	InFence bool
}

// Scanner walks a document line by line, tracking fenced code block state so
// heading detection can be suppressed inside fences. Both "\n" and "\r\n"
// terminators are accepted; Raw keeps whichever the input used, so
// concatenating every Raw reproduces the input exactly. A Scanner is single
// use; re-scanning means calling NewScanner on the same input again.
type Scanner struct {
	src      string
	pos      int
	line     int
	fence    byte // 0 outside a fence, otherwise '`' or '~'
	fenceLen int  // delimiter run length of the open fence
}

// NewScanner returns a Scanner positioned at the start of src.
func NewScanner(src string) *Scanner {
	return &Scanner{src: src}
}

// Next returns the next line of the input. ok is false once the input is
// exhausted. An input without a trailing newline yields a final line with no
// terminator in Raw; an empty input yields no lines at all.
func (s *Scanner) Next() (ln Line, ok bool) {
	if s.pos >= len(s.src) {
		return Line{}, false
	}

	start := s.pos
	var raw string
	if idx := strings.IndexByte(s.src[s.pos:], '\n'); idx >= 0 {
		raw = s.src[start : s.pos+idx+1]
		s.pos += idx + 1
	} else {
		raw = s.src[start:]
		s.pos = len(s.src)
	}
	text := strings.TrimSuffix(raw, "\n")
	text = strings.TrimSuffix(text, "\r")

	s.line++
	ln = Line{Raw: raw, Text: text, Number: s.line}

	if s.fence != 0 {
		// Inside a fence. Only a bare run of the same character, at least as
		// long as the opening run, closes it. A longer run of the other
		// character (e.g. tildes inside a backtick fence) is literal content.
		ln.InFence = true
		if ch, n, bare := fenceDelim(ln.Text); bare && ch == s.fence && n >= s.fenceLen {
			s.fence = 0
			s.fenceLen = 0
		}
	} else if ch, n, _ := fenceDelim(ln.Text); ch != 0 {
		// Opening delimiter; an info string after the run is allowed.
		// If no closing delimiter ever appears the fence runs to EOF.
		ln.InFence = true
		s.fence = ch
		s.fenceLen = n
	}

	return ln, true
}

// fenceDelim reports whether text is a code fence delimiter line: up to three
// leading spaces, then a run of three or more backticks or tildes. bare is
// true when nothing but whitespace follows the run, which is required of a
// closing delimiter.
func fenceDelim(text string) (ch byte, runLen int, bare bool) {
	i := 0
	for i < 3 && i < len(text) && text[i] == ' ' {
		i++
	}
	if i >= len(text) {
		return 0, 0, false
	}
	c := text[i]
	if c != '`' && c != '~' {
		return 0, 0, false
	}
	n := 0
	for i+n < len(text) && text[i+n] == c {
		n++
	}
	if n < 3 {
		return 0, 0, false
	}
	return c, n, strings.TrimSpace(text[i+n:]) == ""
}
