// Package cache keeps recent generation results keyed by the resume identity
// and job posting they were produced for.
package cache

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	lru "github.com/hashicorp/golang-lru/v2"

	"resumatch/internal/types"
)

// DefaultMaxEntries is how many keys a store keeps before evicting.
const DefaultMaxEntries = 10

// NoResumeKey is the fingerprint used when there is no resume.
const NoResumeKey = "no_resume"

const jobSignatureUnits = 300

// djb2 hashes UTF-16 code units with 32-bit wraparound and renders the
// unsigned result in base 36.
func djb2(units []uint16) string {
	h := int32(5381)
	for _, u := range units {
		h = int32(int64(h)*33) ^ int32(u)
	}
	return strconv.FormatUint(uint64(uint32(h)), 36)
}

// Fingerprint identifies a (resume, posting) pair. It changes when the
// candidate's name, positions or skills change, or when the first 300
// UTF-16 units of the posting change.
func Fingerprint(resume *types.ResumeDocument, job *types.JobPosting) string {
	if resume == nil {
		return NoResumeKey
	}

	positions := make([]string, 0, len(resume.WorkExperience))
	for _, w := range resume.WorkExperience {
		positions = append(positions, w.Company+"|"+w.JobTitle)
	}
	resumeSig := strings.Join([]string{resume.PersonalInfo.FullName, strings.Join(positions, ","), resume.Skills}, "::")

	var jobUnits []uint16
	if job != nil {
		jobUnits = utf16.Encode([]rune(job.Text))
		if len(jobUnits) > jobSignatureUnits {
			jobUnits = jobUnits[:jobSignatureUnits]
		}
	}

	units := utf16.Encode([]rune(resumeSig + "||"))
	return djb2(append(units, jobUnits...))
}

// Entry is one cached result set
type Entry[T any] struct {
	Key     string `json:"key"`
	Items   []T    `json:"items"`
	SavedAt int64  `json:"savedAt"`
}

// Store is a bounded, least-recently-saved cache of item lists. Loads do
// not refresh recency. It is safe for concurrent use.
type Store[T any] struct {
	kind string
	now  func() time.Time

	// mu makes Append a single read-modify-write
	mu      sync.Mutex
	entries *lru.Cache[string, Entry[T]]
}

// NewStore creates a store for one kind of generated item. maxEntries <= 0
// selects DefaultMaxEntries.
func NewStore[T any](kind string, maxEntries int) *Store[T] {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	// New only fails for a non-positive size
	entries, _ := lru.New[string, Entry[T]](maxEntries)
	return &Store[T]{kind: kind, now: time.Now, entries: entries}
}

func (s *Store[T]) Kind() string { return s.kind }

// Load returns the entry saved under key.
func (s *Store[T]) Load(key string) (Entry[T], bool) {
	e, ok := s.entries.Peek(key)
	if !ok {
		return Entry[T]{}, false
	}
	e.Items = slices.Clone(e.Items)
	return e, true
}

// Save replaces the items under key and marks it most recent, evicting the
// oldest key when the store is full.
func (s *Store[T]) Save(key string, items []T) Entry[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(key, items)
}

func (s *Store[T]) saveLocked(key string, items []T) Entry[T] {
	e := Entry[T]{Key: key, Items: slices.Clone(items), SavedAt: s.now().UnixMilli()}
	if e.Items == nil {
		e.Items = []T{}
	}
	s.entries.Add(key, e)

	e.Items = slices.Clone(e.Items)
	return e
}

// Append adds items after those already saved under key and returns the
// merged list.
func (s *Store[T]) Append(key string, items []T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, _ := s.entries.Peek(key)
	merged := append(slices.Clone(prev.Items), items...)
	return s.saveLocked(key, merged).Items
}

// Clear drops key.
func (s *Store[T]) Clear(key string) {
	s.entries.Remove(key)
}

func (s *Store[T]) Len() int {
	return s.entries.Len()
}

// Keys returns the stored keys, oldest first.
func (s *Store[T]) Keys() []string {
	return s.entries.Keys()
}

// RelativeTime renders how long ago savedAt (unix ms) was relative to now.
func RelativeTime(savedAt int64, now time.Time) string {
	mins := (now.UnixMilli() - savedAt) / 60_000
	switch {
	case mins < 1:
		return "just now"
	case mins < 60:
		return fmt.Sprintf("%dm ago", mins)
	case mins < 60*24:
		return fmt.Sprintf("%dh ago", mins/60)
	default:
		return fmt.Sprintf("%dd ago", mins/60/24)
	}
}
