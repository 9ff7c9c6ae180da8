package recommendation

import (
	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"
)

// ValidateNames returns, in order, the recommended names that are not exact
// catalog names. It does not modify systems.
func ValidateNames(systems []models.RecommendedSystem, cat *catalog.Catalog) []string {
	invalid := []string{}
	for _, s := range systems {
		if !cat.Contains(s.Name) {
			invalid = append(invalid, s.Name)
		}
	}
	return invalid
}
