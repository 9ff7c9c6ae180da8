package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 10, c.Len())

	e, ok := c.Lookup("Solarmax Flat Plate 200L Indirect")
	require.True(t, ok)
	assert.Equal(t, "SMF200I", e.Code)

	_, ok = c.Lookup("solarmax flat plate 200l indirect")
	assert.False(t, ok, "lookup is exact and case sensitive")

	table := c.Table()
	assert.True(t, strings.HasPrefix(table, "- Solarmax Flat Plate 150L Direct: SMF150D\n"))
	assert.Equal(t, 10, strings.Count(table, "\n"))
}

func TestSelect(t *testing.T) {
	c := Default()

	tests := []struct {
		name           string
		liters         float64
		preferIndirect bool
		wantCode       string
	}{
		{name: "small direct", liters: 120, wantCode: "SMF150D"},
		{name: "small indirect", liters: 120, preferIndirect: true, wantCode: "SMF150I"},
		{name: "240 liters direct", liters: 240, wantCode: "SMF300D"},
		{name: "240 liters borehole", liters: 240, preferIndirect: true, wantCode: "SMF300I"},
		{name: "exact fit", liters: 200, wantCode: "SMF200D"},
		{name: "oversized demand", liters: 900, wantCode: "SMS500I"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, c.Select(tt.liters, tt.preferIndirect).Code)
		})
	}
}

func TestAlternatives(t *testing.T) {
	c := Default()
	primary, _ := c.Lookup("Solarmax Flat Plate 300L Indirect")

	alts := c.Alternatives(primary, 2)
	require.Len(t, alts, 2)
	for _, a := range alts {
		assert.NotEqual(t, primary.Name, a.Name)
		assert.Equal(t, 300, a.TankLiters)
	}
}

func TestValidate(t *testing.T) {
	good := Entry{Name: "A", Code: "A1D", TankLiters: 100, Circuit: CircuitDirect}

	tests := []struct {
		name    string
		entries []Entry
		wantErr string
	}{
		{name: "empty", entries: nil, wantErr: "catalog is empty"},
		{name: "valid", entries: []Entry{good}},
		{
			name:    "duplicate name",
			entries: []Entry{good, {Name: "A", Code: "A2D", TankLiters: 100, Circuit: CircuitDirect}},
			wantErr: `duplicate name "A"`,
		},
		{
			name:    "duplicate code",
			entries: []Entry{good, {Name: "B", Code: "A1D", TankLiters: 100, Circuit: CircuitDirect}},
			wantErr: `duplicate code "A1D"`,
		},
		{
			name:    "suffix mismatch",
			entries: []Entry{{Name: "C", Code: "C1D", TankLiters: 100, Circuit: CircuitIndirect}},
			wantErr: "must end in I",
		},
		{
			name:    "unknown circuit",
			entries: []Entry{{Name: "D", Code: "D1D", TankLiters: 100, Circuit: "Thermo"}},
			wantErr: "circuit must be",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.entries)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Len(), c.Len())

	path := filepath.Join(t.TempDir(), "catalog.json")
	raw, err := json.Marshal(File{Version: "2", Products: []Entry{
		{Name: "Test 100L Direct", Code: "T100D", TankLiters: 100, Circuit: CircuitDirect},
	}})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	c, err = Load(path)
	require.NoError(t, err)
	assert.True(t, c.Contains("Test 100L Direct"))
	assert.False(t, c.Contains("Solarmax Flat Plate 150L Direct"))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
