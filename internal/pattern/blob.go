package pattern

import (
	"math"
	"sort"

	"github.com/ironsheep/omr-patterns/internal/geometry"
	"github.com/ironsheep/omr-patterns/internal/glyph"
)

// BlobParams are the word aggregation thresholds, in pixels.
type BlobParams struct {
	// SmallMaxWeight is the weight at or below which a glyph is set aside
	// (dots, accents) and only inserted once words are formed.
	SmallMaxWeight int

	// WordGapRatio is the maximum horizontal gap, relative to the blob mean
	// glyph height.
	WordGapRatio float64

	// MinOverlapRatio is the minimum vertical overlap, relative to the
	// smaller height, for a glyph to join a blob.
	MinOverlapRatio float64

	// MinBlobWeight is the minimum weight of a kept blob.
	MinBlobWeight int

	// SmallXMargin widens small glyphs horizontally when looking for a blob.
	SmallXMargin int

	// SmallYRatio widens small glyphs vertically, relative to the blob mean
	// glyph height.
	SmallYRatio float64
}

func (e *Env) blobParams() BlobParams {
	cfg := e.Config.Text
	return BlobParams{
		SmallMaxWeight:  e.area(cfg.SmallMaxWeight),
		WordGapRatio:    cfg.WordGapRatio,
		MinOverlapRatio: cfg.MinOverlapRatio,
		MinBlobWeight:   e.area(cfg.MinBlobWeight),
		SmallXMargin:    e.px(cfg.SmallXMargin),
		SmallYRatio:     cfg.SmallYRatio,
	}
}

// Blob is a horizontal run of glyphs likely to form one word or sentence.
type Blob struct {
	Glyphs []*glyph.Glyph
	Bounds geometry.Bounds
	Weight int

	heightSum int
	large     int
	line      *geometry.Line
}

func newBlob(g *glyph.Glyph) *Blob {
	b := &Blob{}
	b.add(g)
	return b
}

func (b *Blob) add(g *glyph.Glyph) {
	b.insert(g)
	b.heightSum += g.Bounds().Height()
	b.large++
}

// insert adds a glyph without letting it count in the mean height.
func (b *Blob) insert(g *glyph.Glyph) {
	b.Glyphs = append(b.Glyphs, g)
	b.Bounds = b.Bounds.Union(g.Bounds())
	b.Weight += g.Weight()
	b.line = nil
}

// MeanHeight returns the mean height of the large glyphs.
func (b *Blob) MeanHeight() float64 {
	if b.large == 0 {
		return 0
	}
	return float64(b.heightSum) / float64(b.large)
}

// Line returns the line fitted through all blob pixels.
func (b *Blob) Line() geometry.Line {
	if b.line == nil {
		var xs, ys []float64
		for _, g := range b.Glyphs {
			gx, gy := g.Points()
			xs = append(xs, gx...)
			ys = append(ys, gy...)
		}
		l := geometry.FitLine(xs, ys)
		b.line = &l
	}
	return *b.line
}

func (b *Blob) maxGap(p BlobParams) int {
	return geometry.Round(b.MeanHeight() * p.WordGapRatio)
}

// accepts reports whether g is close enough on the right and vertically
// aligned enough to extend the blob.
func (b *Blob) accepts(g *glyph.Glyph, p BlobParams) bool {
	gb := g.Bounds()
	if gb.X1-b.Bounds.X2 > b.maxGap(p) {
		return false
	}
	minHeight := min(gb.Height(), b.Bounds.Height())
	if minHeight == 0 {
		return false
	}
	return float64(b.Bounds.VerticalOverlap(gb))/float64(minHeight) >= p.MinOverlapRatio
}

// AggregateBlobs groups glyphs into blobs in one left-to-right pass.
//
// Blobs stay open while a glyph may still reach them; a glyph joins the
// first open blob that accepts it, or starts a new one. Small glyphs are
// returned apart, to be placed by InsertSmall.
func AggregateBlobs(glyphs []*glyph.Glyph, p BlobParams) (blobs []*Blob, small []*glyph.Glyph) {
	sorted := append([]*glyph.Glyph(nil), glyphs...)
	glyph.SortByAbscissa(sorted)

	var open []*Blob
	for _, g := range sorted {
		if g.Weight() <= p.SmallMaxWeight {
			small = append(small, g)
			continue
		}

		gb := g.Bounds()
		stillOpen := open[:0]
		for _, b := range open {
			if gb.X1 > b.Bounds.X2+b.maxGap(p) {
				blobs = append(blobs, b)
			} else {
				stillOpen = append(stillOpen, b)
			}
		}
		open = stillOpen

		var target *Blob
		for _, b := range open {
			if b.accepts(g, p) {
				target = b
				break
			}
		}
		if target != nil {
			target.add(g)
		} else {
			open = append(open, newBlob(g))
		}
	}
	blobs = append(blobs, open...)

	sort.SliceStable(blobs, func(i, j int) bool {
		if blobs[i].Bounds.X1 != blobs[j].Bounds.X1 {
			return blobs[i].Bounds.X1 < blobs[j].Bounds.X1
		}
		return blobs[i].Bounds.Y1 < blobs[j].Bounds.Y1
	})
	return blobs, small
}

// PurgeBlobs drops blobs too light to be text, and blobs whose pixels line
// up vertically.
func PurgeBlobs(blobs []*Blob, p BlobParams) []*Blob {
	var kept []*Blob
	for _, b := range blobs {
		if b.Weight < p.MinBlobWeight {
			continue
		}
		if !b.Line().IsHorizontal() {
			continue
		}
		kept = append(kept, b)
	}
	return kept
}

// InsertSmall adds each small glyph to the nearest blob its widened box
// touches. Distance is the distance to the blob line plus the horizontal gap.
// It returns the small glyphs left out.
func InsertSmall(blobs []*Blob, small []*glyph.Glyph, p BlobParams) []*glyph.Glyph {
	var left []*glyph.Glyph
	for _, s := range small {
		sb := s.Bounds()
		center := sb.Center()

		var best *Blob
		bestDist := math.Inf(1)
		for _, b := range blobs {
			fat := sb.Grow(p.SmallXMargin, geometry.Round(b.MeanHeight()*p.SmallYRatio))
			if !fat.Intersects(b.Bounds) {
				continue
			}
			d := b.Line().DistanceTo(center) + float64(b.Bounds.HorizontalGap(sb))
			if d < bestDist {
				best, bestDist = b, d
			}
		}
		if best == nil {
			left = append(left, s)
			continue
		}
		best.insert(s)
	}
	return left
}
