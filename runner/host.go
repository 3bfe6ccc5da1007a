package runner

import (
	"context"
	"errors"
	"fmt"

	"github.com/notargets/QFKernel/qfunction"
	"github.com/notargets/QFKernel/runner/builder"
	"golang.org/x/sync/errgroup"
)

// ErrBufferSize is returned when a batch buffer is missing or too short for
// the fields of a quadrature function.
var ErrBufferSize = errors.New("quadrature buffer size mismatch")

// Host runs a quadrature function on the CPU, one goroutine per partition of
// the batch. Partitions are disjoint point ranges, so they write disjoint
// parts of every output buffer.
type Host struct {
	*builder.Builder
	Workers int // maximum concurrent partitions, 0 for no limit
}

// NewHost creates a host runner for the partitions in cfg.K.
func NewHost(cfg builder.Config) *Host {
	return &Host{Builder: builder.NewBuilder(cfg)}
}

// Run applies qf to the whole batch and returns after every partition has
// finished. Partitions not yet started when ctx is cancelled are skipped and
// the context error is returned.
func (h *Host) Run(ctx context.Context, qf qfunction.QFunction, in, out [][]float64) error {
	if err := CheckBuffers(qf, h.NumPoints, in, out); err != nil {
		return err
	}
	g, ctx := errgroup.WithContext(ctx)
	if h.Workers > 0 {
		g.SetLimit(h.Workers)
	}
	for p := 0; p < h.NumPartitions; p++ {
		lo, hi := h.Offsets[p], h.Offsets[p+1]
		if lo == hi {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			qf.ApplyRange(h.NumPoints, lo, hi, in, out)
			return nil
		})
	}
	return g.Wait()
}

// CheckBuffers verifies that in and out match the fields of qf for a batch of
// q points.
func CheckBuffers(qf qfunction.QFunction, q int, in, out [][]float64) error {
	if err := checkFields("input", qf.Inputs(), q, in); err != nil {
		return err
	}
	return checkFields("output", qf.Outputs(), q, out)
}

func checkFields(dir string, fields []qfunction.Field, q int, bufs [][]float64) error {
	if len(bufs) != len(fields) {
		return fmt.Errorf("%d %s buffers for %d fields: %w", len(bufs), dir, len(fields), ErrBufferSize)
	}
	for f, field := range fields {
		if need := field.Size * q; len(bufs[f]) < need {
			return fmt.Errorf("%s %s holds %d values, need %d: %w",
				dir, field.Name, len(bufs[f]), need, ErrBufferSize)
		}
	}
	return nil
}
