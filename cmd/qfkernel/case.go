package main

import (
	"fmt"
	"os"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"gopkg.in/yaml.v3"
)

// caseFile is one batch of quadrature points for one builder.
//
//	builder: mixed          # or vector
//	space: 2
//	ref: 2
//	kind: quad-matrix       # mixed only
//	layout: dense           # mixed only
//	coeff: 1.0              # mixed const-scalar only
//	tables:                 # vector only
//	  first: {rank: matrix, dim: 2, attr_mat: [0], values: [1, 0, 1]}
//	  second: {rank: scalar, attr_mat: [0], values: [2]}
//	  blob: [1, 0, 1, 0, 1, 3]  # encoded pair, instead of first and second
//	points:
//	  - {J: [1, 0, 0, 1], qw: 0.5, coeff: [2, 0, 2]}
type caseFile struct {
	Builder string  `yaml:"builder"`
	Space   int     `yaml:"space"`
	Ref     int     `yaml:"ref"`
	Kind    string  `yaml:"kind"`
	Layout  string  `yaml:"layout"`
	Coeff   float64 `yaml:"coeff"`
	Tables  struct {
		First  *tableSpec `yaml:"first"`
		Second *tableSpec `yaml:"second"`
		Blob   []float64  `yaml:"blob"`
	} `yaml:"tables"`
	Points []pointSpec `yaml:"points"`
}

type tableSpec struct {
	Rank    string    `yaml:"rank"`
	Dim     int       `yaml:"dim"`
	AttrMat []int     `yaml:"attr_mat"`
	Values  []float64 `yaml:"values"`
}

type pointSpec struct {
	J     []float64 `yaml:"J"`
	Coeff []float64 `yaml:"coeff"`
	Qw    float64   `yaml:"qw"`
	Attr  int       `yaml:"attr"`
	WDetJ float64   `yaml:"wdetJ"`
	AdjJt []float64 `yaml:"adjJt"`
}

func readCase(path string) (*caseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read case: %w", err)
	}
	var c caseFile
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse case %s: %w", path, err)
	}
	if len(c.Points) == 0 {
		return nil, fmt.Errorf("case %s has no points", path)
	}
	return &c, nil
}

// build returns the quadrature function of the case with its input buffers.
func (c *caseFile) build() (qfunction.QFunction, [][]float64, error) {
	shape, err := geom.NewShape(c.Space, c.Ref)
	if err != nil {
		return nil, nil, err
	}
	switch c.Builder {
	case "mixed", "":
		return c.buildMixed(shape)
	case "vector":
		return c.buildVector(shape)
	}
	return nil, nil, fmt.Errorf("unknown builder %q", c.Builder)
}

func (c *caseFile) buildMixed(shape geom.Shape) (qfunction.QFunction, [][]float64, error) {
	kind, err := parseName(c.Kind, qfunction.ConstScalar, qfunction.QuadScalar,
		qfunction.QuadVector, qfunction.QuadMatrix)
	if err != nil {
		return nil, nil, fmt.Errorf("kind: %w", err)
	}
	layout, err := parseName(c.Layout, kernels.Dense, kernels.Transposed, kernels.Symmetric)
	if err != nil {
		return nil, nil, fmt.Errorf("layout: %w", err)
	}
	qf, err := qfunction.NewMixedMass(qfunction.MixedMassContext{
		Shape:  shape,
		Kind:   kind,
		Layout: layout,
		Coeff:  c.Coeff,
	})
	if err != nil {
		return nil, nil, err
	}
	in, err := c.inputs(qf)
	return qf, in, err
}

func (c *caseFile) buildVector(shape geom.Shape) (qfunction.QFunction, [][]float64, error) {
	pair, err := c.tables()
	if err != nil {
		return nil, nil, err
	}
	qf, err := qfunction.NewVectorMass(qfunction.VectorMassContext{Shape: shape, Tables: pair})
	if err != nil {
		return nil, nil, err
	}
	in, err := c.inputs(qf)
	return qf, in, err
}

func (c *caseFile) tables() (coeff.Pair, error) {
	var pair coeff.Pair
	var err error
	if c.Tables.Blob != nil {
		if c.Tables.First != nil || c.Tables.Second != nil {
			return pair, fmt.Errorf("tables.blob excludes tables.first and tables.second")
		}
		return coeff.DecodePair(c.Tables.Blob)
	}
	if c.Tables.First == nil {
		return pair, fmt.Errorf("vector case needs tables.first or tables.blob")
	}
	if pair.First, err = c.Tables.First.table(); err != nil {
		return pair, fmt.Errorf("first table: %w", err)
	}
	if c.Tables.Second != nil {
		if pair.Second, err = c.Tables.Second.table(); err != nil {
			return pair, fmt.Errorf("second table: %w", err)
		}
	}
	return pair, nil
}

// inputs copies the per-point values of every input field of qf into
// strided buffers.
func (c *caseFile) inputs(qf qfunction.QFunction) ([][]float64, error) {
	q := len(c.Points)
	in := qfunction.Alloc(qf.Inputs(), q)
	for f, field := range qf.Inputs() {
		for i, p := range c.Points {
			var v []float64
			switch field.Name {
			case "coeff":
				v = p.Coeff
			case "J":
				v = p.J
			case "qw":
				v = []float64{p.Qw}
			case "geom":
				v = append([]float64{float64(p.Attr), p.WDetJ}, p.AdjJt...)
			}
			if len(v) != field.Size {
				return nil, fmt.Errorf("point %d: %s has %d values, want %d",
					i, field.Name, len(v), field.Size)
			}
			for k, x := range v {
				in[f][k*q+i] = x
			}
		}
	}
	return in, nil
}

func (t *tableSpec) table() (*coeff.Table, error) {
	rank, err := parseName(t.Rank, coeff.RankScalar, coeff.RankVector, coeff.RankMatrix)
	if err != nil {
		return nil, err
	}
	switch rank {
	case coeff.RankVector:
		return coeff.NewVectorTable(t.Dim, t.AttrMat, t.Values)
	case coeff.RankMatrix:
		return coeff.NewMatrixTable(t.Dim, t.AttrMat, t.Values)
	}
	return coeff.NewScalarTable(t.AttrMat, t.Values)
}

// parseName returns the value among options whose String form is name. An
// empty name selects the first option.
func parseName[T fmt.Stringer](name string, options ...T) (T, error) {
	if name == "" {
		return options[0], nil
	}
	for _, o := range options {
		if o.String() == name {
			return o, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown value %q", name)
}
