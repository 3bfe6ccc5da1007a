package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/QFKernel/coeff"
	"github.com/notargets/QFKernel/geom"
	"github.com/notargets/QFKernel/kernels"
	"github.com/notargets/QFKernel/qfunction"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const mixedCase = `builder: mixed
space: 2
ref: 2
kind: quad-scalar
layout: dense
points:
  - {J: [1, 0, 0, 1], qw: 0.5, coeff: [2]}
  - {J: [2, 0, 0, 1], qw: 1, coeff: [1]}
`

const vectorCase = `builder: vector
space: 2
ref: 2
tables:
  first: {rank: scalar, attr_mat: [0], values: [3]}
  second: {rank: scalar, attr_mat: [0], values: [2]}
points:
  - {attr: 1, wdetJ: 0.5, adjJt: [1, 0, 0, 1], qw: 0.5}
`

func TestRun_MixedText(t *testing.T) {
	out, err := execute(t, "run", "--format", "text", "--workers", "2", writeFile(t, "mixed.yaml", mixedCase))
	require.NoError(t, err)
	// J = diag(2, 1): J^T adj(J)^T / det(J) = I
	assert.Equal(t, "0: 1 0 0 1\n1: 1 0 0 1\n", out)
}

// vectorBlobCase is vectorCase with the tables given in encoded form.
const vectorBlobCase = `builder: vector
space: 2
ref: 2
tables:
  blob: [1, 0, 1, 0, 1, 3, 1, 0, 1, 0, 1, 2]
points:
  - {attr: 1, wdetJ: 0.5, adjJt: [1, 0, 0, 1], qw: 0.5}
`

func TestRun_VectorYAML(t *testing.T) {
	for name, content := range map[string]string{"tables": vectorCase, "blob": vectorBlobCase} {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, "run", "--format", "yaml", writeFile(t, "vector.yaml", content))
			require.NoError(t, err)
			var points []pointQData
			require.NoError(t, yaml.Unmarshal([]byte(out), &points))
			require.Len(t, points, 1)
			assert.InDeltaSlice(t, []float64{1.5, 0, 1.5, 1}, points[0].QData, 1e-15)
		})
	}
}

func TestRun_BadCase(t *testing.T) {
	testCases := []struct {
		name, content string
	}{
		{"no points", "space: 2\nref: 2\n"},
		{"bad shape", "space: 1\nref: 2\npoints:\n  - {J: [1, 0], qw: 1}\n"},
		{"bad kind", "space: 2\nref: 2\nkind: tensor\npoints:\n  - {J: [1, 0, 0, 1], qw: 1}\n"},
		{"short jacobian", "space: 2\nref: 2\ncoeff: 1\npoints:\n  - {J: [1, 0, 0], qw: 1}\n"},
		{"vector without table", "builder: vector\nspace: 1\nref: 1\npoints:\n  - {qw: 1}\n"},
		{"truncated blob", "builder: vector\nspace: 1\nref: 1\ntables:\n  blob: [1, 0, 1, 0, 1]\n" +
			"points:\n  - {attr: 1, wdetJ: 1, adjJt: [1], qw: 1}\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, "run", "--format", "text", writeFile(t, "case.yaml", tc.content))
			assert.Error(t, err)
		})
	}
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	out, err := execute(t, "check", "--points", "5", "--seed", "7", "--workers", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "mixed  33 quad-matrix")
	assert.Contains(t, out, "vector 21 matrix")
	assert.NotContains(t, out, "FAIL")
}

func TestCheck_Diagnose(t *testing.T) {
	mixed, err := qfunction.NewMixedMass(qfunction.MixedMassContext{
		Shape: geom.Shape22, Kind: qfunction.QuadScalar, Layout: kernels.Dense,
	})
	require.NoError(t, err)
	in := qfunction.Alloc(mixed.Inputs(), 2)
	// J of point 1 is diag(2, 3); in[1] is the J field.
	in[1][1], in[1][7] = 2, 3

	vector, err := qfunction.NewVectorMass(qfunction.VectorMassContext{
		Shape:  geom.Shape21,
		Tables: coeff.Pair{First: mustScalarTable(t)},
	})
	require.NoError(t, err)
	vin := qfunction.Alloc(vector.Inputs(), 2)
	// geom holds attr, wdetJ then adj(J)^T; point 0 has adj(J)^T = (0.6, 0.8).
	vin[0][4], vin[0][6] = 0.6, 0.8

	var out bytes.Buffer
	c := checker{w: &out, q: 2}
	c.diagnose(mixed, in, 1)
	c.diagnose(vector, vin, 0)
	assert.Equal(t, "  point 1 J [2 0 0 3] det 6\n  point 0 adjJt [0.6 0.8] det 1\n", out.String())

	e, at := maxRelErr([]float64{1, 2, 3, 4}, []float64{1, 2, 3, 5})
	assert.Equal(t, 3, at)
	assert.InDelta(t, 0.2, e, 1e-15)
}

func mustScalarTable(t *testing.T) *coeff.Table {
	t.Helper()
	tbl, err := coeff.NewScalarTable([]int{0}, []float64{1})
	require.NoError(t, err)
	return tbl
}

func TestShapes(t *testing.T) {
	out, err := execute(t, "shapes")
	require.NoError(t, err)
	assert.Contains(t, out, "32     quad-matrix  [6 6 1]  4/3")
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "qfkernel.yaml", "tolerance: 1.0e-9\nworkers: 4\n")
	v, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1e-9, v.GetFloat64(cfgKeyTolerance))
	assert.Equal(t, 4, v.GetInt(cfgKeyWorkers))
	assert.Equal(t, defaultFormat, v.GetString(cfgKeyFormat))

	t.Chdir(t.TempDir())
	v, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, defaultTolerance, v.GetFloat64(cfgKeyTolerance))

	_, err = loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	t.Setenv("QFKERNEL_WORKERS", "6")
	v, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 6, v.GetInt(cfgKeyWorkers))
}
