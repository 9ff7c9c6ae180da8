package recommendsystem

import "solar-advisor/internal/models"

// Input is the job payload: the questionnaire under "questionnaire".
type Input struct {
	Questionnaire models.QuestionnaireResponse `json:"questionnaire"`
}

type Output struct {
	Recommendation *models.RecommendationResponse `json:"recommendation"`
	PrimarySystem  string                         `json:"primarySystem"`
}
