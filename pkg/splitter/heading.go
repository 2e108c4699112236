package splitter

// MatchHeading classifies a line as an ATX-style heading and extracts its
// level and text. Only ATX headings are recognized; Setext headings
// (text underlined with === or ---) are deliberately unsupported.
//
// The accepted form follows common markdown leniency: up to three leading
// spaces, one to six '#' characters, then a space, tab, or end of line.
// Seven or more '#' characters make the line plain text. A trailing run of
// '#' is stripped from the heading text when it is preceded by whitespace or
// makes up the entire text ("## Sub ##" -> "Sub", but "# C#" keeps "C#").
func MatchHeading(text string) (level int, heading string, ok bool) {
	i := 0
	for i < 3 && i < len(text) && text[i] == ' ' {
		i++
	}
	for i < len(text) && text[i] == '#' {
		level++
		i++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	if i < len(text) && text[i] != ' ' && text[i] != '\t' {
		// "#hashtag" style lines are plain text.
		return 0, "", false
	}

	rest := trimSpaceTab(text[i:])

	// Strip a closing marker run.
	end := len(rest)
	for end > 0 && rest[end-1] == '#' {
		end--
	}
	if end == 0 {
		rest = ""
	} else if end < len(rest) && (rest[end-1] == ' ' || rest[end-1] == '\t') {
		rest = trimSpaceTab(rest[:end])
	}

	return level, rest, true
}

func trimSpaceTab(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t') {
		end--
	}
	return s[start:end]
}
