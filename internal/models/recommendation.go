package models

// SystemSpecifications describes one recommended system.
type SystemSpecifications struct {
	TankSize      string `json:"tank_size"`
	CollectorType string `json:"collector_type"`
	HeatOutput    string `json:"heat_output,omitempty"`
	SuitableFor   string `json:"suitable_for,omitempty"`
}

// Price tiers for alternative options.
const (
	PriceHigh   = "High"
	PriceMedium = "Medium"
	PriceLow    = "Low"
)

type RecommendedSystem struct {
	Name           string               `json:"name"`
	ModelCode      string               `json:"model_code"`
	Description    string               `json:"description"`
	IsPrimary      bool                 `json:"is_primary"`
	Specifications SystemSpecifications `json:"specifications"`
	PriceCategory  string               `json:"price_category,omitempty"`
}

type WaterQualityRequirement struct {
	Parameter   string `json:"parameter"`
	Requirement string `json:"requirement"`
}

type TechnicalSpecification struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
}

type Warranty struct {
	Tank      string `json:"tank"`
	Collector string `json:"collector"`
	Parts     string `json:"parts"`
}

// RecommendationResponse is the result of one pipeline run. It is never
// persisted.
type RecommendationResponse struct {
	RecommendedSystems       []RecommendedSystem       `json:"recommended_systems"`
	WaterQualityRequirements []WaterQualityRequirement `json:"water_quality_requirements"`
	AdditionalComponents     []string                  `json:"additional_components"`
	TechnicalSpecifications  []TechnicalSpecification  `json:"technical_specifications"`
	InstallationNotes        []string                  `json:"installation_notes"`
	Warranty                 *Warranty                 `json:"warranty,omitempty"`
}

// Primary returns the primary recommendation.
func (r *RecommendationResponse) Primary() (RecommendedSystem, bool) {
	for _, s := range r.RecommendedSystems {
		if s.IsPrimary {
			return s, true
		}
	}
	return RecommendedSystem{}, false
}

// SystemNames lists every recommended name in order.
func (r *RecommendationResponse) SystemNames() []string {
	names := make([]string, 0, len(r.RecommendedSystems))
	for _, s := range r.RecommendedSystems {
		names = append(names, s.Name)
	}
	return names
}

// TriageRequest is a free text enquiry to turn into qualifying questions.
type TriageRequest struct {
	UserQuery string `json:"user_query" validate:"required"`
}

type TriageResponse struct {
	GeneratedQuestions []string `json:"generated_questions"`
}

// ChatTurn is one earlier exchange in a product manual conversation.
type ChatTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type QuestionRequest struct {
	Question    string     `json:"question" validate:"required"`
	ChatHistory []ChatTurn `json:"chat_history"`
}

type AnswerResponse struct {
	Answer string `json:"answer"`
}

// SolarRadiation is the NASA POWER climatology for a geocoded city.
type SolarRadiation struct {
	City          string             `json:"city"`
	Latitude      float64            `json:"latitude"`
	Longitude     float64            `json:"longitude"`
	Parameter     string             `json:"parameter"`
	Unit          string             `json:"unit"`
	Monthly       map[string]float64 `json:"monthly"`
	AnnualAverage float64            `json:"annual_average"`
}
