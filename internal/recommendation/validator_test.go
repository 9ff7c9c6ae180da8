package recommendation

import (
	"testing"

	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"

	"github.com/stretchr/testify/assert"
)

func TestValidateNames(t *testing.T) {
	cat := catalog.Default()

	tests := []struct {
		name    string
		systems []models.RecommendedSystem
		want    []string
	}{
		{
			name:    "all known",
			systems: []models.RecommendedSystem{{Name: "Solarmax Flat Plate 200L Direct"}, {Name: "Solarmax Split System 500L Indirect"}},
			want:    []string{},
		},
		{
			name:    "invented name",
			systems: []models.RecommendedSystem{{Name: "Solarmax Flat Plate 200L Direct"}, {Name: "SunBlaster 9000"}},
			want:    []string{"SunBlaster 9000"},
		},
		{
			name:    "case differs",
			systems: []models.RecommendedSystem{{Name: "solarmax flat plate 200l direct"}},
			want:    []string{"solarmax flat plate 200l direct"},
		},
		{
			name: "empty",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidateNames(tt.systems, cat))
		})
	}
}

func TestFallback(t *testing.T) {
	cat := catalog.Default()
	q := testQuestionnaire()

	got := Fallback(Analyze(q), q, cat)

	assert.Equal(t, 1, primaryCount(got))
	primary, ok := got.Primary()
	assert.True(t, ok)
	assert.Equal(t, "Solarmax Flat Plate 300L Indirect", primary.Name)
	assert.Equal(t, "SMF300I", primary.ModelCode)
	assert.Equal(t, "240 Liters", primary.Specifications.TankSize)
	assert.Contains(t, primary.Description, "Catalog tank: 300 Liters")
	assert.Contains(t, primary.Description, "ideal capacity for this household: 240 Liters")
	assert.Equal(t, "4 people", primary.Specifications.SuitableFor)
	assert.Len(t, got.RecommendedSystems, 3)
	assert.Empty(t, ValidateNames(got.RecommendedSystems, cat))
	for _, alt := range got.RecommendedSystems[1:] {
		assert.NotEmpty(t, alt.PriceCategory)
	}
	assert.NotNil(t, got.Warranty)
	assert.Contains(t, got.AdditionalComponents, "Sediment filter on the borehole supply")

	q.WaterSource = "Municipal"
	q.Occupants = "2"
	small := Fallback(Analyze(q), q, cat)
	p, _ := small.Primary()
	assert.Equal(t, "SMF150D", p.ModelCode)
	assert.Equal(t, "120 Liters", p.Specifications.TankSize)
}
