package column

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// Bitmap is an immutable-after-construction set of row offsets. It wraps
// roaring.Bitmap (§4.1, "all bitmaps are Roaring-compatible"); query
// threads may share a *Bitmap freely once Freeze has been called (§5,
// "Bitmaps returned from the factory are immutable after construction").
//
// Roaring already implements the small-cardinality escape encoding
// described in §4.1 internally (run/array/bitmap containers), so the
// factory below does not hand-roll one; it is a thin, named seam so the
// rest of the engine never imports roaring directly.
type Bitmap struct {
	rb     *roaring.Bitmap
	frozen bool
}

// NewBitmap returns an empty, mutable bitmap.
func NewBitmap() *Bitmap {
	return &Bitmap{rb: roaring.New()}
}

// BitmapOf returns a frozen bitmap containing exactly the given offsets.
func BitmapOf(offsets ...uint32) *Bitmap {
	return &Bitmap{rb: roaring.BitmapOf(offsets...), frozen: true}
}

// FullRange returns a frozen bitmap containing every offset in [0,n).
func FullRange(n int) *Bitmap {
	b := roaring.New()
	if n > 0 {
		b.AddRange(0, uint64(n))
	}
	return &Bitmap{rb: b, frozen: true}
}

// Add sets bit i. Panics if the bitmap has been frozen.
func (b *Bitmap) Add(i uint32) {
	if b.frozen {
		panic("column: Add on frozen Bitmap")
	}
	b.rb.Add(i)
}

// Freeze marks the bitmap read-only; safe to call more than once.
func (b *Bitmap) Freeze() *Bitmap {
	b.frozen = true
	return b
}

// Contains reports whether offset i is set.
func (b *Bitmap) Contains(i uint32) bool { return b.rb.Contains(i) }

// Cardinality is the number of set bits.
func (b *Bitmap) Cardinality() uint64 { return b.rb.GetCardinality() }

// ToArray materializes the set bits in ascending order.
func (b *Bitmap) ToArray() []uint32 { return b.rb.ToArray() }

// Clone returns an independent mutable copy.
func (b *Bitmap) Clone() *Bitmap { return &Bitmap{rb: b.rb.Clone()} }

// Union returns a new frozen bitmap: the union of all given bitmaps. Associative
// and commutative per §8's Roaring-associativity property.
func Union(bitmaps ...*Bitmap) *Bitmap {
	if len(bitmaps) == 0 {
		return NewBitmap().Freeze()
	}
	rbs := make([]*roaring.Bitmap, len(bitmaps))
	for i, b := range bitmaps {
		rbs[i] = b.rb
	}
	return &Bitmap{rb: roaring.FastOr(rbs...), frozen: true}
}

// Intersect returns a new frozen bitmap: the intersection of all given
// bitmaps. Short-circuits to empty once any operand is empty, per §4.1.
func Intersect(bitmaps ...*Bitmap) *Bitmap {
	if len(bitmaps) == 0 {
		return NewBitmap().Freeze()
	}
	acc := bitmaps[0].rb.Clone()
	for _, b := range bitmaps[1:] {
		if acc.IsEmpty() {
			break
		}
		acc.And(b.rb)
	}
	return &Bitmap{rb: acc, frozen: true}
}

// Complement returns a new frozen bitmap: every offset in [0,n) not set
// in b. Used to verify the associativity/complement property in §8
// (intersection of a bitmap with its complement over [0,numRows) is
// empty).
func Complement(b *Bitmap, n int) *Bitmap {
	out := b.rb.Clone()
	out.Flip(0, uint64(n))
	return &Bitmap{rb: out, frozen: true}
}

// IsEmpty reports whether the bitmap has no set bits.
func (b *Bitmap) IsEmpty() bool { return b.rb.IsEmpty() }

// Factory constructs and combines Bitmaps. It is the single injection
// seam named in §4.1; segment.New installs the package-level
// DefaultFactory on every Segment. incindex does not use a Factory.
type Factory struct{}

// DefaultFactory is the Factory instance used throughout the engine.
var DefaultFactory = Factory{}

func (Factory) Empty() *Bitmap              { return NewBitmap().Freeze() }
func (Factory) Full(n int) *Bitmap          { return FullRange(n) }
func (Factory) Union(bs ...*Bitmap) *Bitmap  { return Union(bs...) }
func (Factory) Intersect(bs ...*Bitmap) *Bitmap { return Intersect(bs...) }
