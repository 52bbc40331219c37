package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/mohamedkhairy/stock-advisor/pkg/expr"
	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

var (
	// IF <expr> THEN +N
	scoreLineRe = regexp.MustCompile(`(?i)^IF\s+(.+)\s+THEN\s+([+-]?\d+)$`)
	// IF <expr> THEN BUY
	actionLineRe = regexp.MustCompile(`(?i)^IF\s+(.+)\s+THEN\s+(\w+)$`)
)

const maxLineBytes = 1 << 20

// Parser turns rule text into a RuleSet
type Parser struct {
	legacy map[string]int
}

// NewParser creates a parser using the legacy action scores of cfg
func NewParser(cfg Config) *Parser {
	cfg.normalize()
	return &Parser{legacy: cfg.LegacyScores}
}

// ParseLine compiles a single rule line. Blank and comment lines are not
// rules and return (nil, nil).
func (p *Parser) ParseLine(lineNo int, line string) (*Rule, error) {
	text := strings.TrimSpace(line)
	if text == "" || strings.HasPrefix(text, "#") {
		return nil, nil
	}

	fail := func(msg string, err error) (*Rule, error) {
		return nil, &SyntaxError{Line: lineNo, Text: text, Msg: msg, Err: err}
	}

	body, comment := splitComment(text)
	rule := Rule{Line: lineNo, Comment: comment}
	if m := scoreLineRe.FindStringSubmatch(body); m != nil {
		score, err := strconv.Atoi(m[2])
		if err != nil {
			return fail("invalid score", err)
		}
		rule.Expression = normalizeLogic(strings.TrimSpace(m[1]))
		rule.Score = score
	} else if m := actionLineRe.FindStringSubmatch(body); m != nil {
		action := strings.ToUpper(m[2])
		score, ok := p.legacy[action]
		if !ok {
			return fail(fmt.Sprintf("unknown action %q", m[2]), nil)
		}
		rule.Expression = normalizeLogic(strings.TrimSpace(m[1]))
		rule.Score = score
		rule.Action = action
	} else {
		return fail("expected IF <condition> THEN <score|action>", nil)
	}

	compiled, err := expr.Compile(rule.Expression)
	if err != nil {
		return fail(err.Error(), err)
	}
	rule.compiled = compiled
	return &rule, nil
}

// splitComment cuts text at the first '#' that is not inside a quoted
// string literal.
func splitComment(text string) (body, comment string) {
	var quote byte
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case quote != 0 && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return strings.TrimSpace(text[:i]), strings.TrimSpace(text[i+1:])
		}
	}
	return text, ""
}

// normalizeLogic lowercases the and/or/not keywords outside string
// literals so stored expressions and reasons read "a and b".
func normalizeLogic(expression string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(expression); {
		c := expression[i]
		switch {
		case quote != 0:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(expression) {
				b.WriteByte(expression[i+1])
				i++
			} else if c == quote {
				quote = 0
			}
			i++
		case c == '"' || c == '\'':
			quote = c
			b.WriteByte(c)
			i++
		case isWordByte(c):
			j := i
			for j < len(expression) && isWordByte(expression[j]) {
				j++
			}
			word := expression[i:j]
			switch lower := strings.ToLower(word); lower {
			case "and", "or", "not":
				word = lower
			}
			b.WriteString(word)
			i = j
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// Parse reads rules from r. Malformed lines are skipped and listed in the
// report; only a read failure is returned as an error.
func (p *Parser) Parse(source string, r io.Reader) (*RuleSet, *ParseReport, error) {
	report := &ParseReport{Source: source, Skipped: []*SyntaxError{}}
	var parsed []Rule

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if lineNo == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		rule, err := p.ParseLine(lineNo, line)
		if rule == nil && err == nil {
			continue
		}
		report.Lines++
		if err != nil {
			se, ok := err.(*SyntaxError)
			if !ok {
				se = &SyntaxError{Line: lineNo, Text: strings.TrimSpace(line), Msg: err.Error(), Err: err}
			}
			report.Skipped = append(report.Skipped, se)
			rulesSkippedTotal.Inc()
			logger.Warn("Skipping malformed rule",
				logger.String("source", source),
				logger.Int("line", lineNo),
				logger.String("error", se.Msg),
			)
			continue
		}
		parsed = append(parsed, *rule)
	}
	if err := scanner.Err(); err != nil {
		return nil, report, fmt.Errorf("failed to read rules from %s: %w", source, err)
	}

	report.Accepted = len(parsed)
	return NewRuleSet(source, parsed), report, nil
}

// ParseString parses rules held in memory
func (p *Parser) ParseString(source, text string) (*RuleSet, *ParseReport, error) {
	return p.Parse(source, strings.NewReader(text))
}

// ParseFile parses a UTF-8 rules file
func (p *Parser) ParseFile(path string) (*RuleSet, *ParseReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open rules file: %w", err)
	}
	defer f.Close()
	return p.Parse(path, f)
}
