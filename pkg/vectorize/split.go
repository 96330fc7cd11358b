package vectorize

import "slices"

// Part is one bounded share of two evidence lists.
type Part[T any] struct {
	A []T
	B []T
}

// Len returns the combined size of the part.
func (p Part[T]) Len() int {
	return len(p.A) + len(p.B)
}

// Split partitions a and b into ceil((|a|+|b|)/threshold) parts of
// contiguous chunks. When a list has fewer elements than parts, the surplus
// parts reuse its first element. Every part after the first also receives
// the first element of the longer list (a on ties) as a shared anchor.
// threshold must be positive.
func Split[T any](a, b []T, threshold int) []Part[T] {
	if threshold <= 0 {
		panic("vectorize: split threshold must be positive")
	}

	total := len(a) + len(b)
	if total <= threshold {
		return []Part[T]{{A: a, B: b}}
	}

	numParts := ceilDiv(total, threshold)
	minA := ceilDiv(len(a), numParts)
	minB := ceilDiv(len(b), numParts)

	parts := make([]Part[T], numParts)
	for p := range parts {
		parts[p].A = chunk(a, p, minA, numParts)
		parts[p].B = chunk(b, p, minB, numParts)
	}

	if len(a) >= len(b) {
		for p := 1; p < numParts; p++ {
			parts[p].A = append(parts[p].A, a[0])
		}
	} else {
		for p := 1; p < numParts; p++ {
			parts[p].B = append(parts[p].B, b[0])
		}
	}

	return parts
}

// chunk returns a copy of the p-th run of size elements of src.
func chunk[T any](src []T, p, size, numParts int) []T {
	if numParts > len(src) && p >= len(src) {
		if len(src) == 0 {
			return nil
		}
		return []T{src[0]}
	}
	start := p * size
	if start >= len(src) {
		return nil
	}
	end := min(start+size, len(src))
	return slices.Clone(src[start:end])
}

func ceilDiv(n, d int) int {
	q := n / d
	if n%d != 0 {
		q++
	}
	return q
}
