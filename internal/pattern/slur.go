package pattern

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
	"github.com/ironsheep/omr-patterns/internal/lag"
)

// ErrNoCurve is returned when no arc can be drawn through a slur: its
// defining points are aligned or its circle is unusable.
var ErrNoCurve = errors.New("slur has no curve")

// SlurInspector checks every slur of a system, extending the slurs cut by
// other symbols and trimming the slurs stuck to other symbols.
//
// A slur is valid when a circle fits its pixels: the fit distance is at most
// the maximum, the arc can be approximated by a curve, and the radius lies
// within bounds. Each non-manual slur goes through:
//
//	extend (both sides) -> valid? -> done
//	                    -> trim   -> valid? -> replaced by the trimmed slur
//	                                        -> deassigned
//
// A slur whose curve cannot be computed is deassigned right away.
type SlurInspector struct {
	env *Env

	maxDistance        float64
	minRadius          float64
	maxRadius          float64
	largeWidth         int
	minChunkWeight     int
	maxChunkThickness  float64
	minExtensionHeight float64
	boxDx              int
	boxDy              int
	targetHypot        float64
	targetLineHypot    float64
	minSlurWidth       int
	ratio              float64
}

// NewSlurInspector converts the slur settings to pixels for the system scale.
func NewSlurInspector(env *Env) *SlurInspector {
	env.normalize()
	cfg := env.Config.Slur
	scale := env.System.Scale
	return &SlurInspector{
		env:                env,
		maxDistance:        scale.ToPixelsFloat(cfg.MaxCircleDistance),
		minRadius:          scale.ToPixelsFloat(cfg.MinCircleRadius),
		maxRadius:          scale.ToPixelsFloat(cfg.MaxCircleRadius),
		largeWidth:         scale.ToPixels(cfg.LargeSlurWidth),
		minChunkWeight:     scale.AreaFraction(cfg.MinChunkWeight),
		maxChunkThickness:  scale.LineFraction(cfg.MaxChunkThickness),
		minExtensionHeight: scale.LineFraction(cfg.MinExtensionHeight),
		boxDx:              scale.ToPixels(cfg.BoxDx),
		boxDy:              scale.ToPixels(cfg.BoxDy),
		targetHypot:        scale.ToPixelsFloat(cfg.TargetHypot),
		targetLineHypot:    scale.ToPixelsFloat(cfg.TargetLineHypot),
		minSlurWidth:       scale.ToPixels(cfg.MinSlurWidth),
		ratio:              cfg.ExtensionRatio,
	}
}

// Name implements Pattern.
func (si *SlurInspector) Name() string { return "slur" }

// MaxDistance returns the maximum fit distance in pixels.
func (si *SlurInspector) MaxDistance() float64 { return si.maxDistance }

// ExtendedDistance returns the fit distance tolerated after growing a slur
// whose last accepted distance was last: a step toward limit by ratio, never
// beyond limit.
func ExtendedDistance(last, limit, ratio float64) float64 {
	return math.Min(limit, last+ratio*(limit-last))
}

// ExtendedDistance applies ExtendedDistance with the inspector settings.
func (si *SlurInspector) ExtendedDistance(last float64) float64 {
	return ExtendedDistance(last, si.maxDistance, si.ratio)
}

// Run implements Pattern. It returns the number of slurs extended, trimmed
// or deassigned.
func (si *SlurInspector) Run() (int, error) {
	sys := si.env.System
	log := si.env.Logger

	var slurs []*glyph.Glyph
	for _, g := range sys.Glyphs() {
		if g.Shape() != glyph.Slur {
			continue
		}
		if g.IsManual() {
			if c, err := si.ComputeCircle(g.Members()); err == nil {
				g.SetCircle(c)
			}
			continue
		}
		slurs = append(slurs, g)
	}

	n := 0
	for i, slur := range slurs {
		// A previous extension may have swallowed this one.
		if !slur.IsActive() {
			continue
		}
		current, extended, err := si.extendSlur(slur)
		if err != nil {
			log.Debug("abnormal slur", "system", sys.ID, "glyph", current.ID(), "error", err)
			si.env.reject(si.Name(), current, "no curve")
			slurs[i] = nil
			n++
			continue
		}
		if extended {
			slurs[i] = current
			n++
		}
	}

	for _, slur := range slurs {
		if slur == nil || !slur.IsActive() || slur.Shape() != glyph.Slur {
			continue
		}
		if c, err := si.ComputeCircle(slur.Members()); err == nil && si.IsValid(c) {
			slur.SetCircle(c)
			continue
		}
		si.trimSlur(slur)
		n++
	}
	return n, nil
}

// IsValid reports whether a circle describes an acceptable slur.
func (si *SlurInspector) IsValid(c *geometry.Circle) bool {
	if c == nil || c.Distance > si.maxDistance {
		return false
	}
	if c.Curve() == nil {
		return false
	}
	return c.Radius >= si.minRadius && c.Radius <= si.maxRadius
}

// ComputeCircle fits a circle to the pixels of the sections.
//
// The circle goes through three points: the leftmost and rightmost column
// barycenters and a middle barycenter, shifted perpendicular to the chord so
// that it follows the arc rather than the chord. When the fit distance
// exceeds the maximum on a really large slur, a least-squares fit over all
// pixels is used instead.
//
// Returns an error wrapping geometry.ErrDegenerate when the three points are
// aligned, or geometry.ErrTooFewPoints when the sections hold no pixel.
func (si *SlurInspector) ComputeCircle(sections []*lag.Section) (*geometry.Circle, error) {
	var box geometry.Bounds
	for _, s := range sections {
		box = box.Union(s.Bounds())
	}
	if box.Empty() {
		return nil, geometry.ErrTooFewPoints
	}

	var xs, ys []float64
	for _, s := range sections {
		xs, ys = s.AppendPoints(xs, ys)
	}

	left := pointNear(box.X1, sections, box)
	right := pointNear(box.X2-1, sections, box)
	midX := box.X1 + box.Width()/2
	middle := pointNear(midX, sections, box)

	if right.X != left.X {
		slope := (right.Y - left.Y) / (right.X - left.X)
		dy := middle.Y - (left.Y + (middle.X-left.X)*slope)
		x := midX + geometry.Round(-dy*slope)
		x = max(box.X1, min(box.X2-1, x))
		middle = pointNear(x, sections, box)
	}

	c, err := geometry.NewCircleThrough(left, middle, right)
	if err != nil {
		return nil, err
	}
	c.Fit(xs, ys)

	if c.Distance > si.maxDistance && box.Width() > si.largeWidth {
		if fit, err := geometry.FitCircle(xs, ys); err == nil {
			fit.SetDefiningPoints(left, middle, right)
			c = fit
		}
	}
	return c, nil
}

// pointNear returns the barycenter of the section pixels in the column x,
// widening the column until it holds a pixel.
func pointNear(x int, sections []*lag.Section, box geometry.Bounds) geometry.Point {
	roi := geometry.Bounds{X1: x, Y1: box.Y1, X2: x + 1, Y2: box.Y2}
	for {
		var bc geometry.Barycenter
		for _, s := range sections {
			s.Cumulate(&bc, roi)
		}
		if !bc.Empty() || (roi.X1 <= box.X1 && roi.X2 >= box.X2) {
			return bc.Center()
		}
		roi.X1--
		roi.X2++
	}
}

// isSuitable tells whether a glyph may become part of a slur.
func (si *SlurInspector) isSuitable(g *glyph.Glyph) bool {
	if !g.IsActive() {
		return false
	}
	thickness := math.Min(g.MeanThickness(lag.Vertical), g.MeanThickness(lag.Horizontal))
	if thickness > si.maxChunkThickness {
		return false
	}
	if !g.IsKnown() {
		return true
	}
	if g.IsManual() {
		return false
	}
	switch g.Shape() {
	case glyph.Slur, glyph.Clutter, glyph.Structure:
		return true
	}
	return g.Grade() <= si.env.Config.Compound.PartMaxGrade
}

// slurEnd describes one end of a slur and the area where it may continue.
type slurEnd struct {
	circle *geometry.Circle
	point  geometry.Point
	box    geometry.Bounds
}

// end computes the extension area on one side (-1 left, +1 right).
//
// The area starts at the end point and follows the tangent of the curve (or
// the chord for a short slur) over a target length, longer where the end
// touches a staff line. It is never thinner than the minimum extension height.
func (si *SlurInspector) end(slur *glyph.Glyph, side int) (slurEnd, error) {
	c, err := si.ComputeCircle(slur.Members())
	if err != nil {
		return slurEnd{}, fmt.Errorf("failed to fit slur #%d: %v: %w", slur.ID(), err, ErrNoCurve)
	}
	curve := c.Curve()
	if curve == nil {
		return slurEnd{}, fmt.Errorf("slur #%d radius %.1f: %w", slur.ID(), c.Radius, ErrNoCurve)
	}
	slur.SetCircle(c)

	b := slur.Bounds()
	var p, ctrl geometry.Point
	switch {
	case b.Width() <= si.minSlurWidth && side < 0:
		p, ctrl = slur.StartPoint(), slur.StopPoint()
	case b.Width() <= si.minSlurWidth:
		p, ctrl = slur.StopPoint(), slur.StartPoint()
	case side < 0:
		p, ctrl = curve.P1, curve.C1
	default:
		p, ctrl = curve.P2, curve.C2
	}

	column := geometry.Bounds{X1: b.X1, Y1: b.Y1, X2: b.X1 + 1, Y2: b.Y2}
	if side > 0 {
		column.X1, column.X2 = b.X2-1, b.X2
	}
	ep, ok := slur.CentroidIn(column)
	switch {
	case !ok:
		ep = p
	case side > 0:
		ep.X++
	}

	target := si.targetHypot
	if staff := si.env.System.StaffAt(p); staff != nil {
		pitch := int(math.RoundToEven(staff.PitchPosition(p.Y)))
		if pitch >= -4 && pitch <= 4 && pitch%2 == 0 {
			target = si.targetLineHypot
		}
	}

	dir := p.Sub(ctrl)
	norm := dir.Norm()
	if norm == 0 {
		dir, norm = geometry.Point{X: float64(side)}, 1
	}
	ext := ep.Add(dir.Scale(target / norm))

	box := geometry.Rect(
		geometry.Round(math.Min(ext.X, ep.X)),
		geometry.Round(math.Min(ext.Y, ep.Y)),
		geometry.Round(math.Abs(ext.X-ep.X)),
		geometry.Round(math.Abs(ext.Y-ep.Y)))
	if h := float64(box.Height()); h < si.minExtensionHeight {
		box = box.Grow(0, geometry.Round((si.minExtensionHeight-h)/2))
	}
	if box.Width() == 0 {
		box.X2 = box.X1 + 1
	}

	return slurEnd{circle: c, point: ep, box: box}, nil
}

// extendSlur grows the slur on both sides, first by whole glyphs then by
// sections. Each side is extended round after round until a round adds
// nothing, and both sides are swept again while the other one moved, so a
// slur left by a previous run cannot grow any further.
// It returns the resulting slur, whether it grew, and an error wrapping
// ErrNoCurve when the curve of the current slur cannot be computed.
func (si *SlurInspector) extendSlur(root *glyph.Glyph) (*glyph.Glyph, bool, error) {
	extended := false

	for moved := true; moved; {
		moved = false
		for _, side := range []int{-1, 1} {
			for {
				grown, err := si.extendSide(root, side)
				if err != nil {
					return root, extended, err
				}
				if grown == nil {
					break
				}
				root, extended, moved = grown, true, true
			}
		}
	}
	return root, extended, nil
}

// extendSide runs one extension round on a side: whole glyph merges while
// they succeed, then one pass over the sections of the new end area.
// It returns nil when the round added nothing.
func (si *SlurInspector) extendSide(root *glyph.Glyph, side int) (*glyph.Glyph, error) {
	sys := si.env.System
	var result *glyph.Glyph

	for {
		end, err := si.end(root, side)
		if err != nil {
			return nil, err
		}
		universe := sys.Glyphs()
		glyph.SortByWeight(universe)
		compound := BuildCompound(sys, root, true, universe, si.adapter(end))
		if compound == nil {
			break
		}
		si.env.Logger.Debug("slur extended", "system", sys.ID, "from", root.ID(), "to", compound.ID())
		root, result = compound, compound
	}

	grown, err := si.growSections(root, side)
	if err != nil {
		return nil, err
	}
	if grown != nil {
		result = grown
	}
	return result, nil
}

// adapter merges whole glyphs found in the end area, as long as the
// result stays a valid slur within the extended distance.
func (si *SlurInspector) adapter(end slurEnd) CompoundAdapter {
	limit := si.ExtendedDistance(end.circle.Distance)
	return CompoundAdapter{
		ReferenceBox: func(*glyph.Glyph) geometry.Bounds { return end.box },
		IsSuitable:   si.isSuitable,
		Evaluate: func(compound *glyph.Glyph, _ glyph.Context) *glyph.Evaluation {
			c, err := si.ComputeCircle(compound.Members())
			if err != nil || c.Distance > limit || !si.IsValid(c) {
				return nil
			}
			return &glyph.Evaluation{Shape: glyph.Slur, Grade: glyph.AlgorithmGrade}
		},
	}
}

// growSections adds the sections of the end area one at a time, nearest
// first, and stops at the first one that breaks the fit.
func (si *SlurInspector) growSections(root *glyph.Glyph, side int) (*glyph.Glyph, error) {
	sys := si.env.System
	end, err := si.end(root, side)
	if err != nil {
		return nil, err
	}

	members := make(map[*lag.Section]bool)
	for _, s := range root.Members() {
		members[s] = true
	}

	type candidate struct {
		section *lag.Section
		dist    float64
	}
	var candidates []candidate
	for _, s := range sys.Sections() {
		if members[s] || !s.Bounds().Intersects(end.box) {
			continue
		}
		if owner := sys.GlyphOf(s); owner != nil && !si.isSuitable(owner) {
			continue
		}
		if math.Min(s.MeanThickness(lag.Vertical), s.MeanThickness(lag.Horizontal)) > si.maxChunkThickness {
			continue
		}
		candidates = append(candidates, candidate{section: s, dist: s.Centroid().DistanceSq(end.point)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].section.ID() < candidates[j].section.ID()
	})

	sections := root.Members()
	last := end.circle.Distance
	var best *geometry.Circle
	for _, cand := range candidates {
		tried := append(append([]*lag.Section(nil), sections...), cand.section)
		c, err := si.ComputeCircle(tried)
		if err != nil || c.Distance > si.ExtendedDistance(last) || !si.IsValid(c) {
			break
		}
		sections, last, best = tried, c.Distance, c
	}
	if best == nil {
		return nil, nil
	}

	transient := sys.BuildTransientGlyph(sections)
	if orig := sys.Registered(transient); orig != nil && orig.IsShapeForbidden(glyph.Slur) {
		return nil, nil
	}
	g := sys.AddGlyph(transient)
	g.SetShape(glyph.Slur, glyph.AlgorithmGrade)
	g.SetCircle(best)
	si.env.Logger.Debug("slur grown by sections",
		"system", sys.ID, "from", root.ID(), "to", g.ID(), "sections", len(sections)-len(members))
	return g, nil
}

// trimSlur rebuilds a smaller valid slur from the best sections of an
// invalid one. The old slur is deassigned in any case; the new one is
// returned, or nil.
func (si *SlurInspector) trimSlur(old *glyph.Glyph) *glyph.Glyph {
	sys := si.env.System

	members := old.Members()
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Weight() != members[j].Weight() {
			return members[i].Weight() > members[j].Weight()
		}
		return members[i].ID() < members[j].ID()
	})

	seed, seedDist := si.findSeed(members)
	if seed == nil {
		si.env.reject(si.Name(), old, "no seed section")
		return nil
	}

	kept := si.sectionsOnCircle(members, seed, seedDist)
	kept = si.removeIsolated(seed, kept)

	c, err := si.ComputeCircle(kept)
	if err != nil || !si.IsValid(c) {
		si.env.reject(si.Name(), old, "trimmed slur invalid")
		return nil
	}
	transient := sys.BuildTransientGlyph(kept)
	if orig := sys.Registered(transient); orig != nil && orig.IsShapeForbidden(glyph.Slur) {
		si.env.reject(si.Name(), old, "trimmed slur forbidden")
		return nil
	}

	g := sys.AddGlyph(transient)
	g.SetShape(glyph.Slur, glyph.AlgorithmGrade)
	g.SetCircle(c)
	if g != old {
		old.Forbid(glyph.Slur)
	}
	si.env.Logger.Debug("slur trimmed",
		"system", sys.ID, "from", old.ID(), "to", g.ID(), "kept", len(kept), "of", len(members))
	return g
}

// findSeed picks, among the heavy enough and thin enough sections, the one
// best fitted by a circle of its own. sorted is ordered by decreasing weight.
func (si *SlurInspector) findSeed(sorted []*lag.Section) (*lag.Section, float64) {
	var seed *lag.Section
	best := math.Inf(1)
	for _, s := range sorted {
		if s.Weight() < si.minChunkWeight {
			break
		}
		if math.Min(s.MeanThickness(lag.Vertical), s.MeanThickness(lag.Horizontal)) > si.maxChunkThickness {
			continue
		}
		c, err := si.ComputeCircle([]*lag.Section{s})
		if err != nil {
			continue
		}
		if c.Distance <= si.maxDistance && c.Distance < best {
			seed, best = s, c.Distance
		}
	}
	return seed, best
}

// sectionsOnCircle grows the seed through section adjacency, keeping each
// neighbor whose addition keeps the fit within the extended distance.
func (si *SlurInspector) sectionsOnCircle(members []*lag.Section, seed *lag.Section, seedDist float64) []*lag.Section {
	candidates := make(map[*lag.Section]bool, len(members))
	for _, s := range members {
		candidates[s] = true
	}

	visited := map[*lag.Section]bool{seed: true}
	kept := []*lag.Section{seed}
	last := seedDist
	queue := []*lag.Section{seed}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, nb := range s.Neighbors() {
			if !candidates[nb] || visited[nb] {
				continue
			}
			visited[nb] = true
			tried := append(append([]*lag.Section(nil), kept...), nb)
			c, err := si.ComputeCircle(tried)
			if err != nil || c.Distance > si.ExtendedDistance(last) {
				continue
			}
			kept, last = tried, c.Distance
			queue = append(queue, nb)
		}
	}
	return kept
}

// removeIsolated keeps the sections reachable from the seed through
// overlapping margin-grown boxes.
func (si *SlurInspector) removeIsolated(seed *lag.Section, kept []*lag.Section) []*lag.Section {
	box := seed.Bounds()
	result := []*lag.Section{seed}
	var pending []*lag.Section
	for _, s := range kept {
		if s != seed {
			pending = append(pending, s)
		}
	}

	for progress := true; progress; {
		progress = false
		var rest []*lag.Section
		for _, s := range pending {
			grown := s.Bounds().Grow(si.boxDx, si.boxDy)
			if grown.Intersects(box) {
				box = box.Union(grown)
				result = append(result, s)
				progress = true
			} else {
				rest = append(rest, s)
			}
		}
		pending = rest
	}
	return result
}
