package macro

import (
	"strings"
)

// Call is a macro invocation found in source text:
//
//	{{name key='value' other="value"/}}
//	{{name key='value'}}content{{/name}}
type Call struct {
	Name       string
	Params     map[string]string
	Content    string
	HasContent bool
	Start, End int // byte offsets of the call in the scanned text
}

// Segment is either plain text or a macro call.
type Segment struct {
	Text string
	Call *Call
}

// Split cuts source text into text segments and standalone macro calls:
// calls starting at the beginning of a line whose last line holds nothing
// else. Lines inside fenced code blocks are never split.
func Split(src string) []Segment {
	var out []Segment
	textStart := 0
	inFence := false
	pos := 0

	for pos < len(src) {
		lineEnd := strings.IndexByte(src[pos:], '\n')
		if lineEnd < 0 {
			lineEnd = len(src)
		} else {
			lineEnd += pos
		}
		line := src[pos:lineEnd]

		if isFence(line) {
			inFence = !inFence
		}
		if !inFence && strings.HasPrefix(line, "{{") && !strings.HasPrefix(line, "{{/") {
			if call, ok := parseCall(src, pos); ok && restIsBlank(src, call.End) {
				if textStart < pos {
					out = append(out, Segment{Text: src[textStart:pos]})
				}
				out = append(out, Segment{Call: call})
				next := strings.IndexByte(src[call.End:], '\n')
				if next < 0 {
					pos = len(src)
				} else {
					pos = call.End + next + 1
				}
				textStart = pos
				continue
			}
		}
		pos = lineEnd + 1
	}
	if textStart < len(src) {
		out = append(out, Segment{Text: src[textStart:]})
	}
	return out
}

// ScanInline cuts a run of inline text into text and macro calls.
func ScanInline(text string) []Segment {
	var out []Segment
	textStart := 0
	pos := 0
	for {
		i := strings.Index(text[pos:], "{{")
		if i < 0 {
			break
		}
		start := pos + i
		call, ok := parseCall(text, start)
		if !ok {
			pos = start + 2
			continue
		}
		if textStart < start {
			out = append(out, Segment{Text: text[textStart:start]})
		}
		out = append(out, Segment{Call: call})
		pos = call.End
		textStart = pos
	}
	if textStart < len(text) {
		out = append(out, Segment{Text: text[textStart:]})
	}
	return out
}

// parseCall parses the macro call starting at src[start:], which must begin
// with "{{". Unterminated calls are not macros.
func parseCall(src string, start int) (*Call, bool) {
	name, params, selfClosing, end, ok := parseOpen(src, start)
	if !ok {
		return nil, false
	}
	call := &Call{Name: name, Params: params, Start: start, End: end}
	if selfClosing {
		return call, true
	}

	// Find the matching close tag, allowing nested calls of the same macro.
	closeTag := "{{/" + name + "}}"
	depth := 1
	pos := end
	for pos < len(src) {
		i := strings.Index(src[pos:], "{{")
		if i < 0 {
			return nil, false
		}
		at := pos + i
		if strings.HasPrefix(src[at:], closeTag) {
			depth--
			if depth == 0 {
				call.Content = trimNewlines(src[end:at])
				call.HasContent = true
				call.End = at + len(closeTag)
				return call, true
			}
			pos = at + len(closeTag)
			continue
		}
		if n, _, sc, e, ok := parseOpen(src, at); ok && n == name {
			if !sc {
				depth++
			}
			pos = e
			continue
		}
		pos = at + 2
	}
	return nil, false
}

func parseOpen(src string, start int) (name string, params map[string]string, selfClosing bool, end int, ok bool) {
	if !strings.HasPrefix(src[start:], "{{") {
		return "", nil, false, 0, false
	}
	pos := start + 2
	nameStart := pos
	for pos < len(src) && isNameByte(src[pos]) {
		pos++
	}
	if pos == nameStart {
		return "", nil, false, 0, false
	}
	name = src[nameStart:pos]
	params = map[string]string{}

	for {
		pos = skipSpaces(src, pos)
		if pos >= len(src) {
			return "", nil, false, 0, false
		}
		if strings.HasPrefix(src[pos:], "/}}") {
			return name, params, true, pos + 3, true
		}
		if strings.HasPrefix(src[pos:], "}}") {
			return name, params, false, pos + 2, true
		}

		keyStart := pos
		for pos < len(src) && isNameByte(src[pos]) {
			pos++
		}
		if pos == keyStart || pos >= len(src) || src[pos] != '=' {
			return "", nil, false, 0, false
		}
		key := src[keyStart:pos]
		pos++

		var value string
		if pos < len(src) && (src[pos] == '\'' || src[pos] == '"') {
			quote := src[pos]
			closing := strings.IndexByte(src[pos+1:], quote)
			if closing < 0 {
				return "", nil, false, 0, false
			}
			value = src[pos+1 : pos+1+closing]
			pos += closing + 2
		} else {
			valueStart := pos
			for pos < len(src) && src[pos] != ' ' && src[pos] != '/' && src[pos] != '}' {
				pos++
			}
			value = src[valueStart:pos]
		}
		params[key] = value
	}
}

func isNameByte(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '.'
}

func skipSpaces(src string, pos int) int {
	for pos < len(src) && (src[pos] == ' ' || src[pos] == '\t') {
		pos++
	}
	return pos
}

func restIsBlank(src string, pos int) bool {
	for pos < len(src) && src[pos] != '\n' {
		if src[pos] != ' ' && src[pos] != '\t' && src[pos] != '\r' {
			return false
		}
		pos++
	}
	return true
}

func isFence(line string) bool {
	l := strings.TrimLeft(line, " ")
	return strings.HasPrefix(l, "```") || strings.HasPrefix(l, "~~~")
}

// trimNewlines drops one leading and one trailing newline, so that block
// macros written on their own lines get their content without them.
func trimNewlines(s string) string {
	s = strings.TrimPrefix(s, "\r")
	s = strings.TrimPrefix(s, "\n")
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
