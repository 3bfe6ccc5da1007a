package runner

import (
	"unsafe"

	"github.com/notargets/QFKernel/runner/builder"
	"github.com/notargets/gocca"
)

// SizeOfType returns the size in bytes of a data type
func SizeOfType(dt builder.DataType) int64 {
	switch dt {
	case builder.Float32, builder.INT32:
		return 4
	default:
		return 8
	}
}

// mallocInts allocates device memory holding v converted to int_t.
func (kr *Runner) mallocInts(v []int) *gocca.OCCAMemory {
	bytes := int64(len(v)) * SizeOfType(kr.IntType)
	if kr.IntType == builder.INT32 {
		buf := make([]int32, len(v))
		for i, x := range v {
			buf[i] = int32(x)
		}
		return kr.Device.Malloc(bytes, unsafe.Pointer(&buf[0]), nil)
	}
	buf := make([]int64, len(v))
	for i, x := range v {
		buf[i] = int64(x)
	}
	return kr.Device.Malloc(bytes, unsafe.Pointer(&buf[0]), nil)
}

// mallocReals allocates device memory holding v converted to real_t. Empty
// fields still get one value so every kernel argument is a valid pointer.
func (kr *Runner) mallocReals(v []float64) *gocca.OCCAMemory {
	if len(v) == 0 {
		v = []float64{0}
	}
	bytes := int64(len(v)) * SizeOfType(kr.FloatType)
	if kr.FloatType == builder.Float32 {
		buf := make([]float32, len(v))
		for i, x := range v {
			buf[i] = float32(x)
		}
		return kr.Device.Malloc(bytes, unsafe.Pointer(&buf[0]), nil)
	}
	return kr.Device.Malloc(bytes, unsafe.Pointer(&v[0]), nil)
}

// copyRealsFromDevice copies len(dst) real_t values from mem into dst.
func (kr *Runner) copyRealsFromDevice(mem *gocca.OCCAMemory, dst []float64) {
	if len(dst) == 0 {
		return
	}
	bytes := int64(len(dst)) * SizeOfType(kr.FloatType)
	if kr.FloatType == builder.Float32 {
		buf := make([]float32, len(dst))
		mem.CopyTo(unsafe.Pointer(&buf[0]), bytes)
		for i, x := range buf {
			dst[i] = float64(x)
		}
		return
	}
	mem.CopyTo(unsafe.Pointer(&dst[0]), bytes)
}
