package cleaner

// Stats accumulates what a cleaning pass removed and how many operations
// failed. The zero value is the identity; Merge is a field-wise sum, so stats
// of independent subtrees can be combined in any order.
type Stats struct {
	RemovedCount uint64 `json:"removed_count" yaml:"removed_count"`
	RemovedBytes uint64 `json:"removed_bytes" yaml:"removed_bytes"`
	ErrorsTotal  uint64 `json:"errors_total" yaml:"errors_total"`
	// Warnings counts entries left alone because their creation time could
	// not be read. They are not failed operations and never count as errors.
	Warnings uint64 `json:"warnings" yaml:"warnings"`
}

// Merge returns the field-wise sum of a and b.
func Merge(a, b Stats) Stats {
	return Stats{
		RemovedCount: a.RemovedCount + b.RemovedCount,
		RemovedBytes: a.RemovedBytes + b.RemovedBytes,
		ErrorsTotal:  a.ErrorsTotal + b.ErrorsTotal,
		Warnings:     a.Warnings + b.Warnings,
	}
}

// Add merges other into s.
func (s *Stats) Add(other Stats) {
	*s = Merge(*s, other)
}

// IsZero reports whether nothing was removed, failed or skipped with a warning.
func (s Stats) IsZero() bool {
	return s == Stats{}
}
