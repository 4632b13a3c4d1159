package ot

// Batch is the range [Start, End) of one sub-batch.
type Batch struct {
	Start, End int
}

// Len is the number of transfers in b.
func (b Batch) Len() int { return b.End - b.Start }

// Split cuts n transfers into consecutive batches of at most max transfers.
// A non-positive max yields a single batch.
func Split(n, max int) []Batch {
	if n <= 0 {
		return nil
	}
	if max <= 0 || max >= n {
		return []Batch{{0, n}}
	}
	out := make([]Batch, 0, (n+max-1)/max)
	for start := 0; start < n; start += max {
		end := start + max
		if end > n {
			end = n
		}
		out = append(out, Batch{start, end})
	}
	return out
}
