package recommendation

import (
	"fmt"
	"strings"

	"solar-advisor/internal/models"
)

// BuildPrompt renders q as labelled lines. The same text is embedded for
// retrieval and quoted to the model, so it must stay deterministic.
func BuildPrompt(q models.QuestionnaireResponse) string {
	lines := []string{
		fmt.Sprintf("Property Type: %s", q.PropertyType),
		fmt.Sprintf("Number of Occupants: %s", q.Occupants),
		fmt.Sprintf("Budget Range: %s", q.Budget),
		fmt.Sprintf("Location: %s", q.Location),
		fmt.Sprintf("Roof / Existing System: %s", q.ExistingSystem),
		fmt.Sprintf("Installation Timeline: %s", q.Timeline),
		fmt.Sprintf("Water Source: %s", q.WaterSource),
		fmt.Sprintf("Electricity Source: %s", q.ElectricitySource),
	}
	return strings.Join(lines, "\n")
}
