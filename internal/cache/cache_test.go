package cache

import (
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumatch/internal/types"
)

func TestFingerprint(t *testing.T) {
	resume := &types.ResumeDocument{
		PersonalInfo:   types.PersonalInfo{FullName: "Jane Doe"},
		WorkExperience: []types.WorkExperience{{Company: "Acme", JobTitle: "Engineer"}},
		Skills:         "Go, SQL",
	}
	job := &types.JobPosting{Text: "Senior Go developer"}

	assert.Equal(t, NoResumeKey, Fingerprint(nil, job))
	assert.Equal(t, "27cou4", Fingerprint(resume, job))
	assert.Equal(t, "1w6tfd1", Fingerprint(&types.ResumeDocument{}, nil))
	assert.Equal(t, "45h", djb2(nil))
}

func TestFingerprintJobPrefix(t *testing.T) {
	resume := &types.ResumeDocument{PersonalInfo: types.PersonalInfo{FullName: "Jane"}}
	base := strings.Repeat("a", 300)

	k1 := Fingerprint(resume, &types.JobPosting{Text: base + " tail one"})
	k2 := Fingerprint(resume, &types.JobPosting{Text: base + " tail two"})
	assert.Equal(t, k1, k2, "only the first 300 units count")

	k3 := Fingerprint(resume, &types.JobPosting{Text: "b" + base})
	assert.NotEqual(t, k1, k3)

	renamed := &types.ResumeDocument{PersonalInfo: types.PersonalInfo{FullName: "Janet"}}
	assert.NotEqual(t, k1, Fingerprint(renamed, &types.JobPosting{Text: base}))
}

func TestStoreSaveLoadAppendClear(t *testing.T) {
	s := NewStore[string]("questions", 0)
	now := time.UnixMilli(1_700_000_000_000)
	s.now = func() time.Time { return now }

	_, ok := s.Load("k")
	assert.False(t, ok)

	e := s.Save("k", []string{"a"})
	assert.Equal(t, now.UnixMilli(), e.SavedAt)

	merged := s.Append("k", []string{"b", "c"})
	assert.Equal(t, []string{"a", "b", "c"}, merged)

	got, ok := s.Load("k")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, got.Items)

	got.Items[0] = "mutated"
	again, _ := s.Load("k")
	assert.Equal(t, "a", again.Items[0], "Load returns a copy")

	s.Clear("k")
	_, ok = s.Load("k")
	assert.False(t, ok)
	assert.Empty(t, s.Keys())
}

func TestStoreAppendToMissingKey(t *testing.T) {
	s := NewStore[int]("n", 3)
	assert.Equal(t, []int{1}, s.Append("fresh", []int{1}))
}

func TestStoreEvictsOldest(t *testing.T) {
	s := NewStore[int]("n", 3)
	for i := range 3 {
		s.Save(fmt.Sprintf("k%d", i), []int{i})
	}
	// Re-saving k0 makes k1 the oldest.
	s.Save("k0", []int{0})
	s.Save("k3", []int{3})

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"k2", "k0", "k3"}, s.Keys())
	_, ok := s.Load("k1")
	assert.False(t, ok)
}

func TestStoreConcurrentAppend(t *testing.T) {
	s := NewStore[int]("n", DefaultMaxEntries)
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append("shared", []int{i})
		}()
	}
	wg.Wait()

	e, ok := s.Load("shared")
	require.True(t, ok)
	assert.Len(t, e.Items, 50)
}

func TestRelativeTime(t *testing.T) {
	now := time.UnixMilli(10_000_000_000)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{0, "just now"},
		{59 * time.Second, "just now"},
		{time.Minute, "1m ago"},
		{59 * time.Minute, "59m ago"},
		{time.Hour, "1h ago"},
		{23*time.Hour + 59*time.Minute, "23h ago"},
		{24 * time.Hour, "1d ago"},
		{72 * time.Hour, "3d ago"},
		{-time.Minute, "just now"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			saved := now.Add(-tt.ago).UnixMilli()
			assert.Equal(t, tt.want, RelativeTime(saved, now))
		})
	}
}
