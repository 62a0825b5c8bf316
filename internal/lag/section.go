package lag

import (
	"fmt"

	"github.com/ironsheep/omr-patterns/internal/geometry"
)

// Orientation tells along which axis runs are laid out.
type Orientation int

const (
	// Horizontal runs are horizontal pixel strips, stacked row after row.
	Horizontal Orientation = iota
	// Vertical runs are vertical pixel strips, stacked column after column.
	Vertical
)

// String returns "horizontal" or "vertical".
func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Run is a maximal strip of foreground pixels at one position.
//
// For a vertical lag, the position is a column and Start is the top row.
// For a horizontal lag, the position is a row and Start is the left column.
type Run struct {
	Start  int `json:"start"`
	Length int `json:"length"`
}

// Stop returns the last coordinate covered by the run (inclusive).
func (r Run) Stop() int {
	return r.Start + r.Length - 1
}

// overlaps reports whether two runs at consecutive positions touch.
func (r Run) overlaps(o Run) bool {
	return r.Start <= o.Stop() && o.Start <= r.Stop()
}

// Section is a sequence of runs at consecutive positions, one run per position.
//
// Sections are the atoms glyphs are made of: a glyph owns a set of sections,
// and rebuilding a glyph only redistributes sections, never pixels. A section
// is immutable once built, apart from its links to other sections.
type Section struct {
	id          int
	orientation Orientation
	firstPos    int
	runs        []Run
	bounds      geometry.Bounds
	weight      int

	preds   []*Section
	succs   []*Section
	crosses []*Section
}

// NewSection creates a section from its runs.
//
// Parameters:
//   - id: Unique identifier within the lag (used for deterministic ordering).
//   - o: Orientation of the runs.
//   - firstPos: Position (column for Vertical, row for Horizontal) of runs[0].
//   - runs: One run per consecutive position; must not be empty.
func NewSection(id int, o Orientation, firstPos int, runs []Run) *Section {
	s := &Section{
		id:          id,
		orientation: o,
		firstPos:    firstPos,
		runs:        append([]Run(nil), runs...),
	}
	s.computeMetrics()
	return s
}

func (s *Section) computeMetrics() {
	minStart, maxStop := 0, 0
	s.weight = 0
	for i, r := range s.runs {
		if i == 0 || r.Start < minStart {
			minStart = r.Start
		}
		if i == 0 || r.Stop() > maxStop {
			maxStop = r.Stop()
		}
		s.weight += r.Length
	}
	if len(s.runs) == 0 {
		s.bounds = geometry.Bounds{}
		return
	}
	lastPos := s.firstPos + len(s.runs)
	if s.orientation == Vertical {
		s.bounds = geometry.Bounds{X1: s.firstPos, Y1: minStart, X2: lastPos, Y2: maxStop + 1}
	} else {
		s.bounds = geometry.Bounds{X1: minStart, Y1: s.firstPos, X2: maxStop + 1, Y2: lastPos}
	}
}

// ID returns the section identifier.
func (s *Section) ID() int { return s.id }

// Orientation returns the orientation of the section runs.
func (s *Section) Orientation() Orientation { return s.orientation }

// FirstPos returns the position of the first run.
func (s *Section) FirstPos() int { return s.firstPos }

// LastPos returns the position of the last run.
func (s *Section) LastPos() int { return s.firstPos + len(s.runs) - 1 }

// Runs returns the section runs. The slice must not be modified.
func (s *Section) Runs() []Run { return s.runs }

// Bounds returns the bounding box of the section pixels.
func (s *Section) Bounds() geometry.Bounds { return s.bounds }

// Weight returns the number of pixels in the section.
func (s *Section) Weight() int { return s.weight }

// MeanThickness returns the average thickness of the section measured across
// the given orientation: weight divided by the width (Horizontal) or the
// height (Vertical) of the bounds.
func (s *Section) MeanThickness(o Orientation) float64 {
	length := s.bounds.Width()
	if o == Vertical {
		length = s.bounds.Height()
	}
	if length == 0 {
		return 0
	}
	return float64(s.weight) / float64(length)
}

// ForEachPixel calls fn for every pixel of the section.
func (s *Section) ForEachPixel(fn func(x, y int)) {
	for i, r := range s.runs {
		pos := s.firstPos + i
		for c := r.Start; c <= r.Stop(); c++ {
			if s.orientation == Vertical {
				fn(pos, c)
			} else {
				fn(c, pos)
			}
		}
	}
}

// AppendPoints appends the section pixel coordinates to xs and ys.
func (s *Section) AppendPoints(xs, ys []float64) ([]float64, []float64) {
	s.ForEachPixel(func(x, y int) {
		xs = append(xs, float64(x))
		ys = append(ys, float64(y))
	})
	return xs, ys
}

// Cumulate adds to bc every section pixel lying inside roi.
func (s *Section) Cumulate(bc *geometry.Barycenter, roi geometry.Bounds) {
	if !s.bounds.Intersects(roi) {
		return
	}
	s.ForEachPixel(func(x, y int) {
		if roi.Contains(x, y) {
			bc.Include(float64(x), float64(y))
		}
	})
}

// Centroid returns the mass center of the section pixels.
func (s *Section) Centroid() geometry.Point {
	var bc geometry.Barycenter
	s.ForEachPixel(func(x, y int) {
		bc.Include(float64(x), float64(y))
	})
	return bc.Center()
}

// Predecessors returns the sections ending at the position right before this one
// and touching its first run.
func (s *Section) Predecessors() []*Section { return s.preds }

// Successors returns the sections starting at the position right after this one
// and touching its last run.
func (s *Section) Successors() []*Section { return s.succs }

// CrossLinks returns the touching sections of the other orientation.
func (s *Section) CrossLinks() []*Section { return s.crosses }

// Neighbors returns all linked sections: predecessors, successors and cross links.
func (s *Section) Neighbors() []*Section {
	all := make([]*Section, 0, len(s.preds)+len(s.succs)+len(s.crosses))
	all = append(all, s.preds...)
	all = append(all, s.succs...)
	all = append(all, s.crosses...)
	return all
}

// String returns a short description for logs.
func (s *Section) String() string {
	return fmt.Sprintf("%s#%d%v w=%d", s.orientation.String()[:1], s.id, s.bounds, s.weight)
}

// Connect links pred as a predecessor of succ (same orientation).
func Connect(pred, succ *Section) {
	if containsSection(pred.succs, succ) {
		return
	}
	pred.succs = append(pred.succs, succ)
	succ.preds = append(succ.preds, pred)
}

// CrossLink links two touching sections of different orientations.
func CrossLink(a, b *Section) {
	if a == b || containsSection(a.crosses, b) {
		return
	}
	a.crosses = append(a.crosses, b)
	b.crosses = append(b.crosses, a)
}

func containsSection(list []*Section, s *Section) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
