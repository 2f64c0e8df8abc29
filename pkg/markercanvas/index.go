package markercanvas

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	// R-tree shape: 2D, min=25 children, max=50 children.
	indexDims   = 2
	minChildren = 25
	maxChildren = 50

	// boxEpsilon pads zero-area boxes; the R-tree rejects empty rectangles
	// and never reports touching rectangles as intersecting.
	boxEpsilon = 1e-9
)

// ErrInvalidBox indicates a box with a NaN or infinite coordinate, or a
// minimum above its maximum.
var ErrInvalidBox = errors.New("invalid box")

// Entry is a box stored in an Index together with its owner.
type Entry[T any] struct {
	Box   Box
	Value T

	seq uint64
}

// Seq returns the insertion sequence of the entry. Later insertions have
// larger sequences; a bulk load assigns them in slice order.
func (e Entry[T]) Seq() uint64 {
	return e.seq
}

// indexedEntry wraps an entry for R-tree storage.
type indexedEntry[T any] struct {
	Entry[T]
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial interface.
func (e *indexedEntry[T]) Bounds() rtreego.Rect {
	return e.rect
}

// checkBox reports whether b can be stored or searched.
func checkBox(b Box) error {
	for _, v := range [...]float64{b.MinX, b.MinY, b.MaxX, b.MaxY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %+v", ErrInvalidBox, b)
		}
	}
	if b.MinX > b.MaxX || b.MinY > b.MaxY {
		return fmt.Errorf("%w: %+v", ErrInvalidBox, b)
	}
	return nil
}

// storedRect converts a box to the rectangle kept in the tree, widening
// degenerate extents to boxEpsilon.
func storedRect(b Box) (rtreego.Rect, error) {
	if err := checkBox(b); err != nil {
		return rtreego.Rect{}, err
	}
	point := rtreego.Point{b.MinX, b.MinY}

	width := b.MaxX - b.MinX
	height := b.MaxY - b.MinY
	if width < boxEpsilon {
		width = boxEpsilon
	}
	if height < boxEpsilon {
		height = boxEpsilon
	}

	rect, err := rtreego.NewRect(point, []float64{width, height})
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("%w: %v", ErrInvalidBox, err)
	}
	return rect, nil
}

// queryRect converts a query box to a search rectangle that is a superset of
// every stored rectangle the box touches.
func queryRect(b Box) (rtreego.Rect, error) {
	if err := checkBox(b); err != nil {
		return rtreego.Rect{}, err
	}
	point := rtreego.Point{b.MinX - boxEpsilon, b.MinY - boxEpsilon}
	lengths := []float64{
		b.MaxX - b.MinX + 2*boxEpsilon,
		b.MaxY - b.MinY + 2*boxEpsilon,
	}
	rect, err := rtreego.NewRect(point, lengths)
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("%w: %v", ErrInvalidBox, err)
	}
	return rect, nil
}

// Index is a mutable 2D range-search structure over boxes.
//
// A layer keeps two of them: one over marker positions in longitude/latitude
// and one over the pixel boxes of the icons drawn in the last redraw.
// Search is O(log n) through an R-tree; results are returned in insertion
// order so callers see a stable sequence.
//
// Index is not safe for concurrent use.
type Index[T any] struct {
	rtree   *rtreego.Rtree
	entries map[*indexedEntry[T]]struct{}
	seq     uint64
}

// NewIndex returns an empty index.
func NewIndex[T any]() *Index[T] {
	return &Index[T]{
		rtree:   rtreego.NewTree(indexDims, minChildren, maxChildren),
		entries: make(map[*indexedEntry[T]]struct{}),
	}
}

// Len returns the number of stored entries.
func (ix *Index[T]) Len() int {
	return len(ix.entries)
}

// Insert adds a single box. An invalid box is rejected with ErrInvalidBox
// and leaves the index unchanged.
func (ix *Index[T]) Insert(box Box, v T) error {
	e, err := ix.add(box, v)
	if err != nil {
		return err
	}
	ix.rtree.Insert(e)
	return nil
}

// Load adds many boxes at once. An empty index, or a load at least as large
// as a tree node, is rebuilt with R-tree bulk loading; small loads into a
// populated index fall back to single inserts.
//
// Entries with invalid boxes are skipped and the rest are loaded; the
// returned error wraps ErrInvalidBox and counts the skipped entries.
func (ix *Index[T]) Load(entries []Entry[T]) error {
	if len(entries) == 0 {
		return nil
	}

	var (
		skipped int
		first   error
	)
	skip := func(err error) {
		skipped++
		if first == nil {
			first = err
		}
	}

	if ix.Len() > 0 && len(entries) < minChildren {
		for _, e := range entries {
			if err := ix.Insert(e.Box, e.Value); err != nil {
				skip(err)
			}
		}
		return skippedError(skipped, len(entries), first)
	}

	for _, e := range entries {
		if _, err := ix.add(e.Box, e.Value); err != nil {
			skip(err)
		}
	}

	objs := make([]rtreego.Spatial, 0, len(ix.entries))
	for e := range ix.entries {
		objs = append(objs, e)
	}
	ix.rtree = rtreego.NewTree(indexDims, minChildren, maxChildren, objs...)
	return skippedError(skipped, len(entries), first)
}

func skippedError(skipped, total int, first error) error {
	if skipped == 0 {
		return nil
	}
	return fmt.Errorf("skipped %d of %d entries: %w", skipped, total, first)
}

// add registers a new entry and returns it without touching the tree.
func (ix *Index[T]) add(box Box, v T) (*indexedEntry[T], error) {
	rect, err := storedRect(box)
	if err != nil {
		return nil, err
	}

	ix.seq++
	e := &indexedEntry[T]{Entry: Entry[T]{Box: box, Value: v, seq: ix.seq}, rect: rect}
	ix.entries[e] = struct{}{}
	return e, nil
}

// Remove deletes one entry whose box equals box and whose value satisfies
// equal(stored, v). It reports whether an entry was removed.
//
// The predicate is what tells apart two owners of identical boxes.
func (ix *Index[T]) Remove(box Box, v T, equal func(a, b T) bool) bool {
	rect, err := storedRect(box)
	if err != nil {
		return false
	}
	probe := &indexedEntry[T]{Entry: Entry[T]{Box: box, Value: v}, rect: rect}

	var found *indexedEntry[T]
	cmp := func(obj1, obj2 rtreego.Spatial) bool {
		stored, ok := obj1.(*indexedEntry[T])
		if !ok || stored == probe {
			stored, ok = obj2.(*indexedEntry[T])
			if !ok {
				return false
			}
		}
		if stored.Box != box || !equal(stored.Value, v) {
			return false
		}
		found = stored
		return true
	}

	if !ix.rtree.DeleteWithComparator(probe, cmp) {
		return false
	}
	delete(ix.entries, found)
	return true
}

// Search returns every entry whose box intersects query, edges included,
// ordered by insertion sequence. An invalid query matches nothing.
func (ix *Index[T]) Search(query Box) []Entry[T] {
	if ix.Len() == 0 {
		return nil
	}

	rect, err := queryRect(query)
	if err != nil {
		return nil
	}
	spatials := ix.rtree.SearchIntersect(rect)

	result := make([]Entry[T], 0, len(spatials))
	for _, spatial := range spatials {
		e := spatial.(*indexedEntry[T])
		// Drop candidates that only reach the query through padding
		if !e.Box.Intersects(query) {
			continue
		}
		result = append(result, e.Entry)
	}

	sortBySeq(result)
	return result
}

// All returns every entry ordered by insertion sequence.
func (ix *Index[T]) All() []Entry[T] {
	result := make([]Entry[T], 0, len(ix.entries))
	for e := range ix.entries {
		result = append(result, e.Entry)
	}
	sortBySeq(result)
	return result
}

// Clear removes every entry.
func (ix *Index[T]) Clear() {
	ix.rtree = rtreego.NewTree(indexDims, minChildren, maxChildren)
	ix.entries = make(map[*indexedEntry[T]]struct{})
}

func sortBySeq[T any](entries []Entry[T]) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})
}
