package rules

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mohamedkhairy/stock-advisor/pkg/logger"
)

// Store holds the active rule set. Loads replace the set as a whole;
// readers get the immutable snapshot current at the time of the call.
type Store struct {
	mu      sync.RWMutex
	parser  *Parser
	current *RuleSet
	report  *ParseReport
	path    string
	modTime time.Time
}

// NewStore creates an empty store
func NewStore(parser *Parser) *Store {
	return &Store{
		parser:  parser,
		current: NewRuleSet("", nil),
		report:  &ParseReport{Skipped: []*SyntaxError{}},
	}
}

// LoadFile parses path and makes it the active rule set. On a read error
// the previous set stays active.
func (s *Store) LoadFile(path string) (*ParseReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat rules file: %w", err)
	}
	rs, report, err := s.parser.ParseFile(path)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.path = path
	s.modTime = info.ModTime()
	s.swap(rs, report)
	s.mu.Unlock()
	return report, nil
}

// LoadString parses text and makes it the active rule set
func (s *Store) LoadString(source, text string) (*ParseReport, error) {
	rs, report, err := s.parser.ParseString(source, text)
	if err != nil {
		return report, err
	}

	s.mu.Lock()
	s.swap(rs, report)
	s.mu.Unlock()
	return report, nil
}

// swap must be called with the write lock held
func (s *Store) swap(rs *RuleSet, report *ParseReport) {
	s.current = rs
	s.report = report
	rulesLoaded.Set(float64(rs.Len()))
	logger.Info("Rule set loaded",
		logger.String("source", report.Source),
		logger.Int("rules", report.Accepted),
		logger.Int("skipped", len(report.Skipped)),
	)
}

// ReloadIfChanged reloads the last loaded file when its modification time
// moved. It reports whether a reload happened.
func (s *Store) ReloadIfChanged() (bool, *ParseReport, error) {
	s.mu.RLock()
	path, modTime := s.path, s.modTime
	s.mu.RUnlock()

	if path == "" {
		return false, nil, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return false, nil, fmt.Errorf("failed to stat rules file: %w", err)
	}
	if info.ModTime().Equal(modTime) {
		return false, nil, nil
	}
	report, err := s.LoadFile(path)
	if err != nil {
		return false, report, err
	}
	return true, report, nil
}

// Current returns the active rule set, never nil
func (s *Store) Current() *RuleSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Report returns the parse report of the active rule set
func (s *Store) Report() *ParseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Path returns the last loaded file, if any
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Parser returns the parser used for loads
func (s *Store) Parser() *Parser {
	return s.parser
}
