package editor

// Direction is an arrow move in the ordered list.
type Direction int

const (
	Up   Direction = -1
	Down Direction = 1
)

// Renumber moves the element at index from to index to and returns the
// resulting arrangement. Order values are the returned index plus one.
// to is clamped to the list bounds; the input slice is not modified.
func Renumber[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(out) {
		return out
	}
	to = clamp(to, 0, len(out)-1)
	if from == to {
		return out
	}

	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}

// ArrowTarget returns the index an arrow move lands on. Moving the first item
// up wraps to the end and moving the last item down wraps to the start.
func ArrowTarget(index, n int, dir Direction) int {
	if n == 0 {
		return 0
	}
	target := index + int(dir)
	switch {
	case target < 0:
		return n - 1
	case target >= n:
		return 0
	default:
		return target
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
