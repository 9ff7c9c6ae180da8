// Package recommendation turns a sizing questionnaire into a structured
// product recommendation: deterministic sizing, similarity retrieval, LLM
// synthesis with parse repair and a static fallback.
package recommendation

import (
	"math"
	"strconv"
	"strings"

	"solar-advisor/internal/models"
)

const (
	DefaultOccupants      = 4
	MaxOccupants          = 10000
	LitersPerPersonPerDay = 50
	MinimumTankLiters     = 100
	DefaultSunlightHours  = 6.0

	minimumCapacityFactor = 0.8
	idealCapacityFactor   = 1.2
)

// sunlightHours is the mean effective sunshine per day for the cities we
// install in. Keys are matched exactly.
var sunlightHours = map[string]float64{
	"Nairobi":  5.5,
	"Mombasa":  7.0,
	"Kisumu":   6.5,
	"Nakuru":   6.0,
	"Eldoret":  5.8,
	"Thika":    5.6,
	"Nyeri":    5.2,
	"Machakos": 6.2,
	"Malindi":  7.2,
	"Garissa":  7.5,
}

// SunlightHours returns the table value for the first comma segment of
// location, or DefaultSunlightHours.
func SunlightHours(location string) float64 {
	city := strings.TrimSpace(strings.SplitN(location, ",", 2)[0])
	if h, ok := sunlightHours[city]; ok {
		return h
	}
	return DefaultSunlightHours
}

// ParseOccupants reads the occupant count, substituting DefaultOccupants for
// anything that is not an integer in 1..MaxOccupants.
func ParseOccupants(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 || n > MaxOccupants {
		return DefaultOccupants
	}
	return n
}

// Analyze derives the sizing figures for q. It never fails.
func Analyze(q models.QuestionnaireResponse) models.RequirementAnalysis {
	occupants := ParseOccupants(q.Occupants)
	demand := float64(occupants) * LitersPerPersonPerDay

	return models.RequirementAnalysis{
		EstimatedOccupants:     occupants,
		DailyHotWaterNeeded:    demand,
		RequiredRoofType:       q.ExistingSystem,
		MinimumCapacityLiters:  math.Max(MinimumTankLiters, demand*minimumCapacityFactor),
		IdealCapacityLiters:    demand * idealCapacityFactor,
		EffectiveSunlightHours: SunlightHours(q.Location),
	}
}

// IsBorehole reports whether the water source is a borehole supply.
func IsBorehole(q models.QuestionnaireResponse) bool {
	return strings.Contains(strings.ToLower(q.WaterSource), "borehole")
}

// Liters renders a capacity as whole litres, e.g. "240 Liters".
func Liters(v float64) string {
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64) + " Liters"
}
