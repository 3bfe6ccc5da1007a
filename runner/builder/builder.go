package builder

import (
	"fmt"
	"strings"
)

// DataType represents the precision of numerical data
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
	INT32
	INT64
)

// Builder generates OKL source for partition-parallel quadrature kernels.
// Points of a batch are split into contiguous partitions; partition p owns
// points [Offsets[p], Offsets[p]+K[p]).
type Builder struct {
	// Partition configuration
	NumPartitions int
	K             []int
	Offsets       []int
	KpartMax      int // Maximum K value across all partitions
	NumPoints     int // Sum of K, the stride between components of a field

	// Type configuration
	FloatType DataType
	IntType   DataType

	// Generated code
	KernelPreamble string
}

// Config holds configuration for creating a Builder
type Config struct {
	K         []int
	FloatType DataType
	IntType   DataType
}

// NewBuilder creates a new Builder instance
func NewBuilder(cfg Config) *Builder {
	if len(cfg.K) == 0 {
		panic("K array cannot be empty")
	}
	kb := &Builder{
		NumPartitions: len(cfg.K),
		K:             make([]int, len(cfg.K)),
		Offsets:       make([]int, len(cfg.K)+1),
		FloatType:     cfg.FloatType,
		IntType:       cfg.IntType,
	}
	if kb.FloatType == 0 {
		kb.FloatType = Float64
	}
	if kb.IntType == 0 {
		kb.IntType = INT64
	}
	for p, k := range cfg.K {
		if k < 0 {
			panic(fmt.Sprintf("K[%d] = %d is negative", p, k))
		}
		kb.K[p] = k
		kb.Offsets[p+1] = kb.Offsets[p] + k
		kb.KpartMax = max(kb.KpartMax, k)
	}
	kb.NumPoints = kb.Offsets[kb.NumPartitions]
	return kb
}

// EvenPartitions splits q points into n partitions whose sizes differ by at
// most one.
func EvenPartitions(q, n int) []int {
	if n < 1 {
		n = 1
	}
	k := make([]int, n)
	for p := range k {
		k[p] = q / n
		if p < q%n {
			k[p]++
		}
	}
	return k
}

// GeneratePreamble generates the type definitions and partition constants
// shared by every kernel of the builder
func (kb *Builder) GeneratePreamble() string {
	var sb strings.Builder

	floatTypeStr := "double"
	floatSuffix := ""
	if kb.FloatType == Float32 {
		floatTypeStr = "float"
		floatSuffix = "f"
	}
	intTypeStr := "long"
	if kb.IntType == INT32 {
		intTypeStr = "int"
	}

	fmt.Fprintf(&sb, "typedef %s real_t;\n", floatTypeStr)
	fmt.Fprintf(&sb, "typedef %s int_t;\n", intTypeStr)
	fmt.Fprintf(&sb, "#define REAL_ZERO 0.0%s\n", floatSuffix)
	fmt.Fprintf(&sb, "#define REAL_ONE 1.0%s\n", floatSuffix)
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "#define NPART %d\n", kb.NumPartitions)
	fmt.Fprintf(&sb, "#define KpartMax %d\n", max(kb.KpartMax, 1))
	fmt.Fprintf(&sb, "#define NPOINTS %d\n", kb.NumPoints)
	sb.WriteString("\n")

	kb.KernelPreamble = sb.String()
	return kb.KernelPreamble
}

// GetIntSize returns the size of the integer type in bytes
func (kb *Builder) GetIntSize() int {
	if kb.IntType == INT32 {
		return 4
	}
	return 8
}

// GetFloatSize returns the size of the real type in bytes
func (kb *Builder) GetFloatSize() int {
	if kb.FloatType == Float32 {
		return 4
	}
	return 8
}
