package cleaner

import (
	"path/filepath"
	"time"

	"github.com/IGLOU-EU/go-wildcard"
)

// Verdict is the outcome of an age check
type Verdict int

const (
	VerdictEligible Verdict = iota
	VerdictTooNew
	// VerdictUnknownAge means the creation time could not be read. Such
	// entries are left alone rather than risk deleting something recent.
	VerdictUnknownAge
)

// AgeFilter decides whether an entry was created long enough ago to be
// removed.
type AgeFilter struct {
	cutoff *time.Duration
	now    func() time.Time
}

// NewAgeFilter creates an AgeFilter. A nil cutoff disables age filtering.
func NewAgeFilter(cutoff *time.Duration) *AgeFilter {
	return &AgeFilter{
		cutoff: cutoff,
		now:    time.Now,
	}
}

// NeedsCreationTime reports whether Check will look at the creation time.
// Callers use it to avoid reading birth times nobody consults.
func (f *AgeFilter) NeedsCreationTime(skipCheck bool) bool {
	return !skipCheck && f.cutoff != nil
}

// Check evaluates an entry's creation time against the cutoff. skipCheck is
// set when an ancestor directory already qualified, which makes the whole
// subtree eligible.
func (f *AgeFilter) Check(created time.Time, createdErr error, skipCheck bool) Verdict {
	if !f.NeedsCreationTime(skipCheck) {
		return VerdictEligible
	}
	if createdErr != nil {
		return VerdictUnknownAge
	}
	if f.now().Sub(created) >= *f.cutoff {
		return VerdictEligible
	}
	return VerdictTooNew
}

// IsEligible is Check reduced to a yes/no answer.
func (f *AgeFilter) IsEligible(created time.Time, createdErr error, skipCheck bool) bool {
	return f.Check(created, createdErr, skipCheck) == VerdictEligible
}

// Excluder matches entry paths against user supplied wildcard patterns.
type Excluder struct {
	patterns []string
}

// NewExcluder creates an Excluder. Patterns are matched against the full
// slash-separated path and against the base name.
func NewExcluder(patterns []string) *Excluder {
	cleaned := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p != "" {
			cleaned = append(cleaned, filepath.ToSlash(p))
		}
	}
	return &Excluder{patterns: cleaned}
}

// Matches reports whether path is excluded by any pattern
func (e *Excluder) Matches(path string) bool {
	if e == nil || len(e.patterns) == 0 {
		return false
	}

	slashed := filepath.ToSlash(path)
	base := filepath.Base(path)
	for _, pattern := range e.patterns {
		if wildcard.Match(pattern, slashed) || wildcard.Match(pattern, base) {
			return true
		}
	}
	return false
}
