package sequencer

import (
  "testing"
)

func entries(ids ...int) []map[string]any {
  out := make([]map[string]any, 0, len(ids))
  for _, id := range ids {
    out = append(out, map[string]any{"id": float64(id), "audio": "sample.wav"})
  }
  return out
}

func completedSet(ids ...int) map[int]struct{} {
  out := make(map[int]struct{}, len(ids))
  for _, id := range ids {
    out[id] = struct{}{}
  }
  return out
}

func orderedIDs(t *testing.T, res Result) []int {
  t.Helper()
  ids := make([]int, 0, len(res.Ordered))
  for _, entry := range res.Ordered {
    id, ok := EntryID(entry)
    if !ok {
      t.Fatalf("entry without id in sequence: %v", entry)
    }
    ids = append(ids, id)
  }
  return ids
}

func TestSequenceIsPermutation(t *testing.T) {
  items := entries(1, 2, 3, 4, 5, 6, 7)
  completed := completedSet(2, 5)

  res := Sequence(items, completed, NewShuffler(42))

  if len(res.Ordered) != len(items) {
    t.Fatalf("sequence length = %d, want %d", len(res.Ordered), len(items))
  }
  seen := map[int]bool{}
  for _, id := range orderedIDs(t, res) {
    if seen[id] {
      t.Fatalf("duplicate id %d in sequence", id)
    }
    seen[id] = true
  }
  for want := 1; want <= 7; want++ {
    if !seen[want] {
      t.Fatalf("id %d missing from sequence", want)
    }
  }
}

func TestSequenceCompletedPrefix(t *testing.T) {
  items := entries(10, 20, 30, 40)
  completed := completedSet(30, 10)

  res := Sequence(items, completed, NewShuffler(1))
  ids := orderedIDs(t, res)

  // done items first, ascending
  if ids[0] != 10 || ids[1] != 30 {
    t.Fatalf("completed prefix = %v, want [10 30 ...]", ids[:2])
  }
  if res.PageNo != 2 {
    t.Fatalf("PageNo = %d, want 2", res.PageNo)
  }
  for _, id := range ids[2:] {
    if _, done := completed[id]; done {
      t.Fatalf("completed id %d found after the prefix", id)
    }
  }
}

func TestSequenceDeterministicForSeed(t *testing.T) {
  items := entries(1, 2, 3, 4, 5, 6, 7, 8)

  first := orderedIDs(t, Sequence(entries(1, 2, 3, 4, 5, 6, 7, 8), nil, NewShuffler(42)))
  second := orderedIDs(t, Sequence(items, nil, NewShuffler(42)))

  if len(first) != len(second) {
    t.Fatalf("length mismatch: %d vs %d", len(first), len(second))
  }
  for i := range first {
    if first[i] != second[i] {
      t.Fatalf("sequences diverge at %d: %v vs %v", i, first, second)
    }
  }
}

func TestSequenceEmptyTest(t *testing.T) {
  res := Sequence(nil, completedSet(1, 2), NewShuffler(42))
  if len(res.Ordered) != 0 {
    t.Fatalf("expected empty sequence, got %v", res.Ordered)
  }
  if res.PageNo != 0 {
    t.Fatalf("PageNo = %d, want 0", res.PageNo)
  }
}

func TestSequenceIgnoresMarkersOutsideTest(t *testing.T) {
  items := entries(1, 2, 3)
  completed := completedSet(1, 99)

  res := Sequence(items, completed, NewShuffler(42))
  ids := orderedIDs(t, res)

  if len(ids) != 3 {
    t.Fatalf("sequence length = %d, want 3", len(ids))
  }
  if ids[0] != 1 {
    t.Fatalf("first id = %d, want completed item 1", ids[0])
  }
  if res.PageNo != 1 {
    t.Fatalf("PageNo = %d, want 1 (marker 99 is not in the test)", res.PageNo)
  }
}

func TestSequenceScenarioResumeAfterOneItem(t *testing.T) {
  items := entries(1, 2, 3)
  res := Sequence(items, completedSet(1), NewShuffler(42))
  ids := orderedIDs(t, res)

  if res.PageNo != 1 {
    t.Fatalf("PageNo = %d, want 1", res.PageNo)
  }
  if ids[0] != 1 {
    t.Fatalf("first id = %d, want 1", ids[0])
  }
  rest := map[int]bool{ids[1]: true, ids[2]: true}
  if !rest[2] || !rest[3] {
    t.Fatalf("remaining ids = %v, want a permutation of {2, 3}", ids[1:])
  }
}
