package segment

// RegionRenderer produces the base rendered text for one segment. Expensive
// decoration (syntax highlighting) is applied later via SetRegion once a
// background job completes.
type RegionRenderer func(Segment) string

// Outcome reports how an Apply call changed the rendered regions.
type Outcome struct {
	Rebuilt bool
	Changed []int // indexes rendered by this apply
}

// Reconciler maintains the rendered regions for one entry's rich content
// across streaming updates. While the block structure is stable only the
// changed segments are re-rendered in place; any structural change, a new
// block included, discards everything and rebuilds in the new order.
type Reconciler struct {
	render  RegionRenderer
	segs    []Segment
	regions []string
	gens    []uint64
	nextGen uint64
}

// NewReconciler creates an empty reconciler.
func NewReconciler(render RegionRenderer) *Reconciler {
	return &Reconciler{render: render}
}

// Apply reconciles a new segmentation against the previous one. Returns
// which regions were (re)rendered and whether the whole structure was
// rebuilt. A rebuild invalidates every prior generation, so stale
// highlight results are dropped on arrival.
func (r *Reconciler) Apply(next []Segment) Outcome {
	prevKinds := KindsOf(r.segs)
	nextKinds := KindsOf(next)

	if !kindsEqual(prevKinds, nextKinds) {
		return r.rebuild(next)
	}

	changed := make([]int, 0, 2)
	for i, seg := range next {
		if seg == r.segs[i] {
			continue
		}
		r.regions[i] = r.render(seg)
		r.gens[i] = r.bump()
		changed = append(changed, i)
	}
	r.segs = next
	return Outcome{Changed: changed}
}

func (r *Reconciler) rebuild(next []Segment) Outcome {
	changed := make([]int, len(next))
	r.regions = make([]string, len(next))
	r.gens = make([]uint64, len(next))
	for i, seg := range next {
		r.regions[i] = r.render(seg)
		r.gens[i] = r.bump()
		changed[i] = i
	}
	r.segs = next
	return Outcome{Rebuilt: true, Changed: changed}
}

// Reset discards all segments and regions, invalidating every generation.
// Used on theme or width changes where every region must re-render.
func (r *Reconciler) Reset() {
	r.segs = nil
	r.regions = nil
	r.gens = nil
}

// SetRenderer swaps the base renderer (theme or width change).
func (r *Reconciler) SetRenderer(render RegionRenderer) {
	r.render = render
}

// Segments returns the current segmentation. Callers must not mutate it.
func (r *Reconciler) Segments() []Segment {
	return r.segs
}

// Regions returns the rendered regions in order. Callers must not mutate
// the slice.
func (r *Reconciler) Regions() []string {
	return r.regions
}

// Generation returns the invalidation token for segment i.
func (r *Reconciler) Generation(i int) uint64 {
	if i < 0 || i >= len(r.gens) {
		return 0
	}
	return r.gens[i]
}

// SetRegion replaces region i if gen still matches, reporting whether the
// result was applied. Late results from replaced segments miss the
// generation check and are dropped.
func (r *Reconciler) SetRegion(i int, gen uint64, text string) bool {
	if i < 0 || i >= len(r.regions) || r.gens[i] != gen || gen == 0 {
		return false
	}
	r.regions[i] = text
	return true
}

func (r *Reconciler) bump() uint64 {
	r.nextGen++
	return r.nextGen
}
