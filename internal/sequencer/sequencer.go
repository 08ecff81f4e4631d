package sequencer

import (
  "math/rand"
  "sort"
  "sync"
)

// Shuffler wraps a seeded generator behind a mutex so concurrent requests can
// share one instance. The seed is fixed per process (default 42 in config),
// which makes orderings reproducible across runs; ordering is a presentation
// concern only, so that is acceptable.
type Shuffler struct {
  mu  sync.Mutex
  rng *rand.Rand
}

func NewShuffler(seed int64) *Shuffler {
  return &Shuffler{rng: rand.New(rand.NewSource(seed))}
}

func (s *Shuffler) Shuffle(n int, swap func(i, j int)) {
  s.mu.Lock()
  defer s.mu.Unlock()
  s.rng.Shuffle(n, swap)
}

// Result is the ordered item sequence served to a resuming rater. PageNo is
// the number of completed items within the test, a resume-point hint for the
// client rather than an index into Ordered.
type Result struct {
  Ordered []map[string]any
  PageNo  int
}

// Sequence partitions a test's item list against the rater's completed marker
// set and returns completed items first (ascending item id, so the prefix is
// deterministic) followed by a shuffled permutation of the rest. Markers that
// do not name an item of the test are ignored. Items without a usable integer
// id count as not completed.
func Sequence(entries []map[string]any, completed map[int]struct{}, sh *Shuffler) Result {
  done := make([]map[string]any, 0, len(completed))
  remaining := make([]map[string]any, 0, len(entries))

  for _, entry := range entries {
    id, ok := EntryID(entry)
    if !ok {
      remaining = append(remaining, entry)
      continue
    }
    if _, isDone := completed[id]; isDone {
      done = append(done, entry)
    } else {
      remaining = append(remaining, entry)
    }
  }

  sort.SliceStable(done, func(i, j int) bool {
    a, _ := EntryID(done[i])
    b, _ := EntryID(done[j])
    return a < b
  })

  if sh != nil {
    sh.Shuffle(len(remaining), func(i, j int) {
      remaining[i], remaining[j] = remaining[j], remaining[i]
    })
  }

  ordered := make([]map[string]any, 0, len(entries))
  ordered = append(ordered, done...)
  ordered = append(ordered, remaining...)

  return Result{Ordered: ordered, PageNo: len(done)}
}

// EntryID pulls the integer "id" out of a decoded item. JSON numbers arrive as
// float64; other shapes mean the item has no usable id.
func EntryID(entry map[string]any) (int, bool) {
  raw, ok := entry["id"]
  if !ok {
    return 0, false
  }
  switch v := raw.(type) {
  case float64:
    return int(v), true
  case int:
    return v, true
  default:
    return 0, false
  }
}
