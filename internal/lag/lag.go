package lag

import (
	"image"
	"sort"
)

// Lag (Line Adjacency Graph) is the set of sections extracted from a binary
// image in one orientation, linked to their neighbors.
type Lag struct {
	Orientation Orientation
	Sections    []*Section
}

// pending tracks the runs of the previous position and the section each one
// extends.
type pending struct {
	run     Run
	section *Section
	touches int
}

// Build extracts the sections of a grayscale image.
//
// Pixels darker than threshold are foreground (ink). Runs are collected along
// the orientation, then joined position after position: a run continues the
// section of the previous run only when each of them touches nobody else;
// otherwise a new section starts and is connected to every touching section
// of the previous position. Section junctions therefore happen only at
// forks, merges and ends.
//
// Parameters:
//   - img: Binarized (or grayscale) image.
//   - o: Orientation of the runs.
//   - threshold: Gray level below which a pixel is ink. Typical: 128.
//   - firstID: Identifier given to the first section; subsequent ones increase.
//
// Returns a Lag whose sections are ordered by identifier.
func Build(img *image.Gray, o Orientation, threshold uint8, firstID int) *Lag {
	b := img.Bounds()
	posMin, posMax, coordMin, coordMax := b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
	if o == Horizontal {
		posMin, posMax, coordMin, coordMax = b.Min.Y, b.Max.Y, b.Min.X, b.Max.X
	}

	ink := func(pos, coord int) bool {
		if o == Vertical {
			return img.GrayAt(pos, coord).Y < threshold
		}
		return img.GrayAt(coord, pos).Y < threshold
	}

	l := &Lag{Orientation: o}
	nextID := firstID
	var previous []*pending

	for pos := posMin; pos < posMax; pos++ {
		runs := scanRuns(pos, coordMin, coordMax, ink)

		// Count touching runs on both sides before deciding on continuations.
		overlaps := make([][]*pending, len(runs))
		for i, r := range runs {
			for _, p := range previous {
				if r.overlaps(p.run) {
					overlaps[i] = append(overlaps[i], p)
					p.touches++
				}
			}
		}

		current := make([]*pending, 0, len(runs))
		for i, r := range runs {
			prev := overlaps[i]
			if len(prev) == 1 && prev[0].touches == 1 {
				s := prev[0].section
				s.runs = append(s.runs, r)
				current = append(current, &pending{run: r, section: s})
				continue
			}

			s := &Section{id: nextID, orientation: o, firstPos: pos, runs: []Run{r}}
			nextID++
			l.Sections = append(l.Sections, s)
			for _, p := range prev {
				Connect(p.section, s)
			}
			current = append(current, &pending{run: r, section: s})
		}
		previous = current
	}

	for _, s := range l.Sections {
		s.computeMetrics()
	}
	return l
}

// scanRuns collects the ink runs at one position.
func scanRuns(pos, coordMin, coordMax int, ink func(pos, coord int) bool) []Run {
	var runs []Run
	start := -1
	for c := coordMin; c < coordMax; c++ {
		if ink(pos, c) {
			if start < 0 {
				start = c
			}
			continue
		}
		if start >= 0 {
			runs = append(runs, Run{Start: start, Length: c - start})
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, Run{Start: start, Length: coordMax - start})
	}
	return runs
}

// Components groups sections into connected components using section links.
//
// Only links between sections of the given set are followed. Each component
// is sorted by section identifier and components are ordered by their first
// section identifier.
func Components(sections []*Section) [][]*Section {
	inSet := make(map[*Section]bool, len(sections))
	for _, s := range sections {
		inSet[s] = true
	}

	sorted := append([]*Section(nil), sections...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].id < sorted[j].id })

	visited := make(map[*Section]bool, len(sections))
	var components [][]*Section
	for _, start := range sorted {
		if visited[start] {
			continue
		}

		// Stack-based traversal, like an iterative flood fill
		var comp []*Section
		stack := []*Section{start}
		visited[start] = true
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			comp = append(comp, s)
			for _, n := range s.Neighbors() {
				if inSet[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		sort.Slice(comp, func(i, j int) bool { return comp[i].id < comp[j].id })
		components = append(components, comp)
	}
	return components
}
