package pattern

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// maxLineSize bounds a single rule line.
const maxLineSize = 1 << 20

// ParseError reports a malformed rule line in a pattern source.
type ParseError struct {
	Source string // File the rule came from (empty for readers)
	Line   int    // 1-based line number
	Text   string // Offending line
	Reason string // What is wrong with it
}

// Error implements the error interface for ParseError.
func (e *ParseError) Error() string {
	var sb strings.Builder
	if e.Source != "" {
		sb.WriteString(e.Source)
		sb.WriteString(":")
	} else {
		sb.WriteString("line ")
	}
	sb.WriteString(fmt.Sprintf("%d: %s: %q", e.Line, e.Reason, e.Text))
	return sb.String()
}

// IsParseError checks if the error is or wraps a ParseError.
func IsParseError(err error) bool {
	if err == nil {
		return false
	}
	var pe *ParseError
	return errors.As(err, &pe)
}

// Load reads and parses the pattern file at path.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", err)
	}
	defer f.Close()

	catalog, err := Parse(f)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Source = path
			return nil, pe
		}
		return nil, fmt.Errorf("failed to read pattern file %s: %w", path, err)
	}
	return catalog, nil
}

// Parse reads rules of the form `priority;"pattern";"label"`, one per line.
// Blank lines are skipped. The whole source is rejected on the first
// malformed line; a partial catalog is never returned.
func Parse(r io.Reader) (*Catalog, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var rules []Rule
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		rule, err := ParseRule(line)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = lineNo
			}
			return nil, err
		}
		rule.Line = lineNo
		rules = append(rules, rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return NewCatalog(rules), nil
}

// ParseRule parses a single `priority;"pattern";"label"` line.
// The pattern runs from the first quote after the priority up to the next
// `";"`; the label is everything after it, without its quotes. Neither
// field is unescaped.
func ParseRule(line string) (Rule, error) {
	fail := func(reason string) (Rule, error) {
		return Rule{}, &ParseError{Text: line, Reason: reason}
	}

	sep := strings.IndexByte(line, ';')
	if sep < 0 {
		return fail("missing ';' after priority")
	}

	priority, err := strconv.Atoi(strings.TrimSpace(line[:sep]))
	if err != nil {
		return fail("priority is not an integer")
	}

	rest := strings.TrimSpace(line[sep+1:])
	if !strings.HasPrefix(rest, `"`) {
		return fail("pattern is not quoted")
	}

	end := strings.Index(rest[1:], `";"`)
	if end < 0 {
		return fail("missing quoted label")
	}
	pattern := rest[1 : 1+end]

	label := rest[1+end+2:]
	if len(label) < 2 || !strings.HasSuffix(label, `"`) {
		return fail("label is not quoted")
	}
	label = label[1 : len(label)-1]

	return Rule{
		Priority: priority,
		Pattern:  []byte(pattern),
		Label:    label,
	}, nil
}
