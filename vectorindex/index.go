package vectorindex

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// FlatIndex is a brute-force nearest-neighbor index over fixed-dimension
// vectors. Rows are append-only and position-stable: row i of the index
// stays aligned with row i of whatever lookup table the caller maintains
// alongside it. The index is not safe for concurrent mutation; once
// built it is read-only and may be searched from any number of
// goroutines.
type FlatIndex struct {
	dimension int
	vectors   [][]float64
}

var (
	ErrInvalidDimension  = errors.New("invalid index dimension")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	ErrEmptyIndex        = errors.New("index contains no vectors")
)

// New creates an empty flat index for vectors of the given dimension
func New(dimension int) (*FlatIndex, error) {
	if dimension <= 0 {
		return nil, ErrInvalidDimension
	}
	return &FlatIndex{dimension: dimension}, nil
}

// Add appends one vector as the next row of the index
func (ix *FlatIndex) Add(vec []float64) error {
	if len(vec) != ix.dimension {
		return fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, ix.dimension, len(vec))
	}
	ix.vectors = append(ix.vectors, vec)
	return nil
}

// Len returns the number of rows in the index
func (ix *FlatIndex) Len() int {
	return len(ix.vectors)
}

// Dimension returns the vector dimension the index was built for
func (ix *FlatIndex) Dimension() int {
	return ix.dimension
}

// Search returns the k nearest rows to the query by squared L2 distance,
// as parallel slices of (distance, row index) sorted by ascending
// distance. Fewer than k results are returned when the index is smaller
// than k.
func (ix *FlatIndex) Search(query []float64, k int) ([]float64, []int, error) {
	if len(ix.vectors) == 0 {
		return nil, nil, ErrEmptyIndex
	}
	if len(query) != ix.dimension {
		return nil, nil, fmt.Errorf("%w: want %d, got %d", ErrDimensionMismatch, ix.dimension, len(query))
	}
	if k <= 0 {
		return nil, nil, errors.New("k must be positive")
	}

	rows := make([]int, len(ix.vectors))
	dists := make([]float64, len(ix.vectors))
	for i, v := range ix.vectors {
		rows[i] = i
		dists[i] = squaredL2(query, v)
	}

	sort.SliceStable(rows, func(a, b int) bool {
		return dists[rows[a]] < dists[rows[b]]
	})

	if k > len(rows) {
		k = len(rows)
	}

	outDists := make([]float64, k)
	outRows := make([]int, k)
	for i := 0; i < k; i++ {
		outRows[i] = rows[i]
		outDists[i] = dists[rows[i]]
	}
	return outDists, outRows, nil
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func cosine(a, b []float64) float64 {
	na := math.Sqrt(dot(a, a))
	nb := math.Sqrt(dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot(a, b) / (na * nb)
}
