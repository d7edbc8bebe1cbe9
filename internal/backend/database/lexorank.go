package database

import "strings"

// Ranks are variable-length strings over '0'..'z' compared byte-wise. New
// draft images always go to the end, reorders only rewrite the moved image.
const (
	minChar = '0'
	maxChar = 'z'
	midChar = 'U'
)

// Next returns a rank sorting strictly after prev.
func Next(prev string) string {
	if prev == "" {
		return string(midChar)
	}
	// Bump the last character when there is room so repeated appends do not
	// grow the rank by one character each time.
	last := prev[len(prev)-1]
	if last < maxChar-1 {
		return prev[:len(prev)-1] + string(rune(last+(maxChar-last)/2))
	}
	return prev + string(midChar)
}

// NextN returns n successive ranks after prev.
func NextN(prev string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		prev = Next(prev)
		out = append(out, prev)
	}
	return out
}

// IsBetween reports whether rank lies strictly between prev and next. An empty
// bound is open. With both bounds open it returns false so the caller assigns
// a canonical rank.
func IsBetween(prev, rank, next string) bool {
	switch {
	case prev == "" && next == "":
		return false
	case prev == "":
		return strings.Compare(rank, next) < 0
	case next == "":
		return strings.Compare(prev, rank) < 0
	}
	return strings.Compare(prev, rank) < 0 && strings.Compare(rank, next) < 0
}

// Between returns a rank strictly between prev and next. An empty next means
// no upper bound.
func Between(prev, next string) string {
	if next == "" {
		return Next(prev)
	}

	var out []byte
	for i := 0; ; i++ {
		lo := byte(minChar)
		if i < len(prev) {
			lo = prev[i]
		}
		hi := byte(maxChar)
		if i < len(next) {
			hi = next[i]
		}

		if lo == hi {
			out = append(out, lo)
			continue
		}
		if lo+1 < hi {
			return string(append(out, lo+(hi-lo)/2))
		}
		// Adjacent characters: keep lo and look for room one position deeper.
		out = append(out, lo)
	}
}

// Reorder computes new ranks for the ids in order, returning only the ids that
// have to change. Ids whose current rank already fits between their
// neighbours keep it.
func Reorder(existing map[string]string, order []string) map[string]string {
	updates := make(map[string]string, len(order))

	rankOf := func(id string) string {
		if r, ok := updates[id]; ok {
			return r
		}
		return existing[id]
	}

	for i, id := range order {
		var prevRank, nextRank string
		if i > 0 {
			prevRank = rankOf(order[i-1])
		}
		if i < len(order)-1 {
			nextRank = rankOf(order[i+1])
		}

		cur := existing[id]
		if cur != "" && IsBetween(prevRank, cur, nextRank) {
			continue
		}
		updates[id] = Between(prevRank, nextRank)
	}

	return updates
}

// Move swaps id with its neighbour in the given direction and returns the new
// order. ok is false when id is not in order; moving past either end leaves
// the order unchanged.
func Move(order []string, id string, up bool) (moved []string, ok bool) {
	idx := -1
	for i := range order {
		if order[i] == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return order, false
	}

	moved = append([]string(nil), order...)
	switch {
	case up && idx > 0:
		moved[idx], moved[idx-1] = moved[idx-1], moved[idx]
	case !up && idx < len(moved)-1:
		moved[idx], moved[idx+1] = moved[idx+1], moved[idx]
	}
	return moved, true
}
