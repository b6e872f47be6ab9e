package radio

import "sync"

// Sample holds the most recent link-quality fields under a single lock that
// covers both the update and the read path, so a concurrent reader never
// observes a partially applied update. Updates are all-or-nothing; there is
// no partial-field API and no history.
type Sample struct {
	mu      sync.Mutex
	fields  StatusFields
	hasData bool
}

// NewSample returns an empty sample. Until the first ApplyUpdate the numeric
// fields read as zero and HasData is false.
func NewSample() *Sample {
	return &Sample{}
}

// ApplyUpdate overwrites all fields with the given values and marks the
// sample as populated. Last write wins; there is no merging.
func (s *Sample) ApplyUpdate(f StatusFields) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fields = f
	s.hasData = true
}

// Snapshot returns a consistent copy of the fields plus whether any update
// has ever been applied.
func (s *Sample) Snapshot() (StatusFields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fields, s.hasData
}
