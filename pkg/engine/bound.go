package engine

// bounder enforces the total retained-line ceiling across all groups of
// one execution. Eviction is oldest-group-first, oldest-line-first, and
// never touches a group's status or timestamps. Truncation is a normal
// condition under load, surfaced to the consumer, never an error.
type bounder struct {
	maxLines int
	total    int
	dropped  int
}

func newBounder(maxLines int) *bounder {
	return &bounder{maxLines: maxLines}
}

// note records n newly retained lines.
func (b *bounder) note(n int) {
	b.total += n
}

// enforce evicts the oldest lines until the retained total is back at the
// ceiling. Returns how many lines were evicted by this call.
func (b *bounder) enforce(groups []*NodeGroup) int {
	if b.maxLines <= 0 || b.total <= b.maxLines {
		return 0
	}
	excess := b.total - b.maxLines
	remaining := excess
	for _, grp := range groups {
		if remaining == 0 {
			break
		}
		n := len(grp.lines)
		if n == 0 {
			continue
		}
		if n > remaining {
			n = remaining
		}
		grp.lines = grp.lines[n:]
		remaining -= n
	}
	evicted := excess - remaining
	b.total -= evicted
	b.dropped += evicted
	return evicted
}

// truncated reports whether any line has ever been evicted.
func (b *bounder) truncated() bool {
	return b.dropped > 0
}
