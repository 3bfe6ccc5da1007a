package coeff

import (
	"errors"
	"fmt"
)

// ErrBlob is returned when a flat context buffer cannot be decoded.
var ErrBlob = errors.New("malformed coefficient blob")

// Flat table layout, used to ship tables to device kernels and to exchange
// them with engines that pass a single context buffer:
//
//	[nattr, attrMat[0..nattr), nmat, rank, dim, values[0..nmat*width)]
//
// A pair is the first table immediately followed by the second; the second
// table starts at EncodedLen(first).
const blobHeader = 4

// EncodedLen is the number of values Encode produces for t.
func EncodedLen(t *Table) int {
	return blobHeader + len(t.attrMat) + len(t.values)
}

// Encode appends the flat form of t to dst.
func Encode(dst []float64, t *Table) []float64 {
	dst = append(dst, float64(len(t.attrMat)))
	for _, m := range t.attrMat {
		dst = append(dst, float64(m))
	}
	dst = append(dst, float64(t.NumMaterials()), float64(t.rank), float64(t.dim))
	return append(dst, t.values...)
}

// EncodePair encodes p.First followed by p.Second (when present) and returns
// the offset of the second table.
func EncodePair(p Pair) (blob []float64, secondOffset int) {
	blob = Encode(nil, p.First)
	secondOffset = len(blob)
	if p.Second != nil {
		blob = Encode(blob, p.Second)
	}
	return blob, secondOffset
}

// Decode reads one table from the front of blob and returns it with the
// number of values consumed.
func Decode(blob []float64) (*Table, int, error) {
	if len(blob) < 1 {
		return nil, 0, fmt.Errorf("empty buffer: %w", ErrBlob)
	}
	nattr := int(blob[0])
	if nattr < 0 || len(blob) < 1+nattr+3 {
		return nil, 0, fmt.Errorf("attribute map of %d entries overruns %d values: %w",
			nattr, len(blob), ErrBlob)
	}
	attrMat := make([]int, nattr)
	for a := range attrMat {
		attrMat[a] = int(blob[1+a])
	}
	pos := 1 + nattr
	nmat, rank, dim := int(blob[pos]), Rank(blob[pos+1]), int(blob[pos+2])
	pos += 3
	if rank > RankMatrix {
		return nil, 0, fmt.Errorf("rank %d: %w", rank, ErrBlob)
	}
	if dim < 1 || dim > 3 {
		return nil, 0, fmt.Errorf("dimension %d: %w", dim, ErrBlob)
	}
	n := nmat * Width(rank, dim)
	if nmat < 0 || n < 0 || len(blob) < pos+n {
		return nil, 0, fmt.Errorf("%d materials overrun %d values: %w", nmat, len(blob), ErrBlob)
	}
	t, err := newTable(rank, dim, attrMat, blob[pos:pos+n])
	if err != nil {
		return nil, 0, fmt.Errorf("decode: %w", errors.Join(ErrBlob, err))
	}
	return t, pos + n, nil
}

// DecodePair decodes a buffer written by EncodePair. A buffer holding a
// single table yields a Pair with a nil Second.
func DecodePair(blob []float64) (Pair, error) {
	first, n, err := Decode(blob)
	if err != nil {
		return Pair{}, fmt.Errorf("first table: %w", err)
	}
	p := Pair{First: first}
	if n == len(blob) {
		return p, nil
	}
	second, m, err := Decode(blob[n:])
	if err != nil {
		return Pair{}, fmt.Errorf("second table at offset %d: %w", n, err)
	}
	if n+m != len(blob) {
		return Pair{}, fmt.Errorf("%d trailing values: %w", len(blob)-n-m, ErrBlob)
	}
	p.Second = second
	return p, nil
}
