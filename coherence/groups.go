package coherence

import "fmt"

// groups maps external channel indices onto the combined layout the TFR
// expects: group 1 channels first, then group 2, each in first-seen order
// with duplicates dropped.
type groups struct {
	group1 []int
	group2 []int
	index  map[int]int // external channel -> combined index
}

// newGroups builds the mapping, skipping any channels in exclude.
func newGroups(g1, g2 []int, exclude map[int]bool) (*groups, error) {
	g := &groups{index: make(map[int]int)}

	seen1 := make(map[int]bool)
	for _, ch := range g1 {
		if seen1[ch] || exclude[ch] {
			continue
		}
		seen1[ch] = true
		g.group1 = append(g.group1, ch)
	}

	seen2 := make(map[int]bool)
	for _, ch := range g2 {
		if seen2[ch] || exclude[ch] {
			continue
		}
		if seen1[ch] {
			return nil, fmt.Errorf("%w: channel %d", ErrGroupsOverlap, ch)
		}
		seen2[ch] = true
		g.group2 = append(g.group2, ch)
	}

	if len(g.group1) == 0 || len(g.group2) == 0 {
		return nil, ErrGroupEmpty
	}

	for i, ch := range g.group1 {
		g.index[ch] = i
	}
	for i, ch := range g.group2 {
		g.index[ch] = len(g.group1) + i
	}

	return g, nil
}

func (g *groups) nChannels() int { return len(g.group1) + len(g.group2) }

// combinedIndex returns the TFR channel index for an external channel, or
// false for channels outside both groups.
func (g *groups) combinedIndex(ch int) (int, bool) {
	i, ok := g.index[ch]
	return i, ok
}

// pairs enumerates the (group 1, group 2) combinations in snapshot order.
func (g *groups) pairs() []Pair {
	out := make([]Pair, 0, len(g.group1)*len(g.group2))
	for _, x := range g.group1 {
		for _, y := range g.group2 {
			out = append(out, Pair{ChanX: x, ChanY: y})
		}
	}
	return out
}
