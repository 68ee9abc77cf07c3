package toroid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coilworks/fpcwind/pkg/fab"
)

func TestLookupAliases(t *testing.T) {
	db := NewDatabase()

	for _, alias := range []string{"T68", "t68", "T-68", "t-68", "FT68", "FT-68", " t 68 "} {
		core, err := db.Lookup(alias)
		require.NoError(t, err, "alias %q", alias)
		assert.Equal(t, "T68", core.Name)
		assert.Equal(t, 17.5, core.ODMM)
		assert.Equal(t, 9.4, core.IDMM)
		assert.Equal(t, 4.8, core.HeightMM)
	}
}

func TestLookupUnknown(t *testing.T) {
	db := NewDatabase()

	_, err := db.Lookup("T-999")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownCore))
	assert.Contains(t, err.Error(), "T-999")
}

func TestListOrdered(t *testing.T) {
	cores := NewDatabase().List()
	require.Len(t, cores, 4)
	assert.Equal(t, "T37", cores[0].Name)
	assert.Equal(t, "T200", cores[3].Name)
}

func TestAddRejectsInvalidSpec(t *testing.T) {
	db := NewDatabase()

	err := db.Add(CoreSpec{Name: "BAD", ODMM: 5, IDMM: 9, HeightMM: 3})
	assert.Error(t, err)

	err = db.Add(CoreSpec{Name: "BAD", ODMM: 9, IDMM: 5, HeightMM: 0})
	assert.Error(t, err)
}

func TestCoreSpecDerived(t *testing.T) {
	core := CoreSpec{Name: "T68", ODMM: 17.5, IDMM: 9.4, HeightMM: 4.8}
	assert.InDelta(t, 4.05, core.RadialMM(), 1e-12)
	assert.InDelta(t, 13.45, core.MeanDiameterMM(), 1e-12)
}

func TestRequestValidate(t *testing.T) {
	cons := fab.Default()
	valid := Request{Turns: 20, CurrentAmps: 0.5, CoverageDeg: 360, MaxLayers: 2, Copper: fab.CopperOneOz}
	require.NoError(t, valid.Validate(cons))

	tests := []struct {
		name   string
		mutate func(*Request)
		field  string
	}{
		{"zero turns", func(r *Request) { r.Turns = 0 }, "turns"},
		{"negative amps", func(r *Request) { r.CurrentAmps = -1 }, "amps"},
		{"zero coverage", func(r *Request) { r.CoverageDeg = 0 }, "angle"},
		{"coverage above 360", func(r *Request) { r.CoverageDeg = 361 }, "angle"},
		{"zero layers", func(r *Request) { r.MaxLayers = 0 }, "max-layers"},
		{"unknown copper", func(r *Request) { r.Copper = "9oz" }, "copper"},
		{"unlisted via drill", func(r *Request) { r.ViaDrillMM = 0.33 }, "via-drill"},
		{"tap out of range", func(r *Request) { r.Taps = []int{25} }, "taps"},
		{"tap below one", func(r *Request) { r.Taps = []int{0} }, "taps"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate(cons)
			require.Error(t, err)
			var invalid *InvalidRequestError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}
