package runner

import (
	"fmt"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/runner/builder"
	"github.com/notargets/gocca"
)

// Runner compiles quadrature kernels for an OCCA device and runs them over a
// partitioned batch of points
type Runner struct {
	*builder.Builder
	Device       *gocca.OCCADevice
	Kernels      map[string]*gocca.OCCAKernel
	PooledMemory map[string]*gocca.OCCAMemory
}

// NewRunner creates a new Runner instance. The batch size is the sum of
// Config.K.
func NewRunner(device *gocca.OCCADevice, Config builder.Config) (kr *Runner) {
	if device == nil {
		panic("Device cannot be nil")
	}
	bld := builder.NewBuilder(Config)

	if bld.KpartMax > 1048576 { // 2^20 points
		panic(fmt.Sprintf("KpartMax exceeds 2^20 (1048576), usually caused by unbalanced workloads.\n"+
			"Found KpartMax=%d. Please balance K values or increase partition count.\n"+
			"Current K values: %v\n", bld.KpartMax, bld.K))
	}

	kr = &Runner{
		Builder:      bld,
		Device:       device,
		Kernels:      make(map[string]*gocca.OCCAKernel),
		PooledMemory: make(map[string]*gocca.OCCAMemory),
	}
	kr.PooledMemory["K"] = kr.mallocInts(bld.K)
	kr.PooledMemory["KOFF"] = kr.mallocInts(bld.Offsets[:bld.NumPartitions])
	return
}

// BuildKernel compiles and registers a kernel with the program
func (kr *Runner) BuildKernel(kernelSource, kernelName string) (*gocca.OCCAKernel, error) {
	kr.GeneratePreamble()

	// Combine preamble with kernel source
	fullSource := kr.KernelPreamble + "\n" + kernelSource

	var kernel *gocca.OCCAKernel
	var err error

	if kr.Device.Mode() == "OpenMP" {
		// Workaround for OCCA bug: OpenMP doesn't get default -O3 flag
		props := gocca.JsonParse(`{"compiler_flags": "-O3"}`)
		defer props.Free()
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, props)
	} else {
		kernel, err = kr.Device.BuildKernelFromString(fullSource, kernelName, nil)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to build kernel %s: %w", kernelName, err)
	}
	if kernel == nil {
		return nil, fmt.Errorf("kernel build returned nil for %s", kernelName)
	}
	kr.Kernels[kernelName] = kernel
	return kernel, nil
}

// Run evaluates qf on the device for the whole batch. The kernel for qf's
// configuration is compiled on first use and reused afterwards.
func (kr *Runner) Run(qf qfunction.QFunction, in, out [][]float64) error {
	if err := CheckBuffers(qf, kr.NumPoints, in, out); err != nil {
		return err
	}

	var name, source string
	var args [][]float64
	switch f := qf.(type) {
	case *qfunction.MixedMass:
		ctx := f.Context()
		name, source = kr.MixedMassKernel(ctx)
		args = in
		if ctx.Kind == qfunction.ConstScalar {
			args = append([][]float64{{ctx.Coeff}}, in...)
		}
	case *qfunction.VectorMass:
		ctx := f.Context()
		blob, secondOffset := coeff.EncodePair(ctx.Tables)
		name, source = kr.VectorMassKernel(ctx, secondOffset)
		args = append([][]float64{blob}, in...)
	default:
		return fmt.Errorf("no device kernel for %T: %w", qf, qfunction.ErrUnsupported)
	}

	kernel, ok := kr.Kernels[name]
	if !ok {
		var err error
		if kernel, err = kr.BuildKernel(source, name); err != nil {
			return err
		}
	}

	kernelArgs := []interface{}{kr.PooledMemory["K"], kr.PooledMemory["KOFF"]}
	var temps []*gocca.OCCAMemory
	defer func() {
		for _, mem := range temps {
			mem.Free()
		}
	}()
	for _, a := range args {
		mem := kr.mallocReals(a)
		temps = append(temps, mem)
		kernelArgs = append(kernelArgs, mem)
	}
	outMem := make([]*gocca.OCCAMemory, len(out))
	for f, field := range qf.Outputs() {
		outMem[f] = kr.mallocReals(make([]float64, field.Size*kr.NumPoints))
		temps = append(temps, outMem[f])
		kernelArgs = append(kernelArgs, outMem[f])
	}

	if err := kernel.RunWithArgs(kernelArgs...); err != nil {
		return fmt.Errorf("kernel execution failed: %w", err)
	}
	kr.Device.Finish()

	for f, field := range qf.Outputs() {
		kr.copyRealsFromDevice(outMem[f], out[f][:field.Size*kr.NumPoints])
	}
	return nil
}

// Free releases all resources
func (kr *Runner) Free() {
	for _, kernel := range kr.Kernels {
		kernel.Free()
	}
	for _, mem := range kr.PooledMemory {
		mem.Free()
	}
}
