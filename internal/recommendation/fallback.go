package recommendation

import (
	"fmt"

	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"
)

const fallbackAlternatives = 2

// Fallback builds a recommendation from the catalog alone. It is used when no
// model output could be parsed and is always well formed: one primary sized
// to the ideal capacity, followed by up to two alternatives.
func Fallback(analysis models.RequirementAnalysis, q models.QuestionnaireResponse, cat *catalog.Catalog) *models.RecommendationResponse {
	borehole := IsBorehole(q)
	primary := cat.Select(analysis.IdealCapacityLiters, borehole)
	suitable := fmt.Sprintf("%d people", analysis.EstimatedOccupants)

	systems := []models.RecommendedSystem{{
		Name:        primary.Name,
		ModelCode:   primary.Code,
		Description: primaryDescription(primary, analysis),
		IsPrimary:   true,
		Specifications: models.SystemSpecifications{
			TankSize:      Liters(analysis.IdealCapacityLiters),
			CollectorType: primary.CollectorType,
			HeatOutput:    primary.HeatOutput,
			SuitableFor:   suitable,
		},
	}}

	for _, alt := range cat.Alternatives(primary, fallbackAlternatives) {
		systems = append(systems, models.RecommendedSystem{
			Name:        alt.Name,
			ModelCode:   alt.Code,
			Description: alt.Description,
			Specifications: models.SystemSpecifications{
				TankSize:      Liters(float64(alt.TankLiters)),
				CollectorType: alt.CollectorType,
				HeatOutput:    alt.HeatOutput,
			},
			PriceCategory: priceCategory(alt, primary),
		})
	}

	resp := &models.RecommendationResponse{
		RecommendedSystems: systems,
		WaterQualityRequirements: []models.WaterQualityRequirement{
			{Parameter: "pH", Requirement: "6.5 - 8.5"},
			{Parameter: "Total Dissolved Solids", Requirement: "Below 600 mg/L"},
		},
		AdditionalComponents: []string{
			"Pressure relief valve",
			"Thermostatic mixing valve",
		},
		TechnicalSpecifications: []models.TechnicalSpecification{
			{Parameter: "Daily Hot Water Demand", Value: Liters(analysis.DailyHotWaterNeeded)},
			{Parameter: "Minimum Tank Capacity", Value: Liters(analysis.MinimumCapacityLiters)},
			{Parameter: "Effective Sunlight Hours", Value: fmt.Sprintf("%.1f hours/day", analysis.EffectiveSunlightHours)},
		},
		InstallationNotes: []string{
			"Collectors should face north at a tilt close to the site latitude plus 10 degrees.",
			"A site survey confirms roof loading and pipe runs before installation.",
		},
		Warranty: &models.Warranty{
			Tank:      "5 years",
			Collector: "5 years",
			Parts:     "1 year",
		},
	}

	if analysis.RequiredRoofType != "" {
		resp.InstallationNotes = append(resp.InstallationNotes,
			fmt.Sprintf("Mounting kit to suit the existing roof or system: %s.", analysis.RequiredRoofType))
	}
	if borehole {
		resp.WaterQualityRequirements = append(resp.WaterQualityRequirements,
			models.WaterQualityRequirement{Parameter: "Hardness", Requirement: "Indirect circuit required for borehole water"})
		resp.AdditionalComponents = append(resp.AdditionalComponents, "Sediment filter on the borehole supply")
	}
	return resp
}

// primaryDescription appends the catalog tank size and the ideal capacity to
// the entry description.
func primaryDescription(e catalog.Entry, analysis models.RequirementAnalysis) string {
	return fmt.Sprintf("%s Catalog tank: %s, ideal capacity for this household: %s.",
		e.Description, Liters(float64(e.TankLiters)), Liters(analysis.IdealCapacityLiters))
}

func priceCategory(alt, primary catalog.Entry) string {
	switch {
	case alt.TankLiters > primary.TankLiters:
		return models.PriceHigh
	case alt.TankLiters < primary.TankLiters:
		return models.PriceLow
	default:
		return models.PriceMedium
	}
}
