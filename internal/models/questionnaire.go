package models

import (
	"encoding/json"
	"strconv"
)

// QuestionnaireResponse is the customer's answers to the sizing questionnaire.
type QuestionnaireResponse struct {
	PropertyType      string `json:"propertyType" validate:"required"`
	Occupants         string `json:"occupants" validate:"required"`
	Budget            string `json:"budget" validate:"required"`
	Location          string `json:"location" validate:"required"`
	ExistingSystem    string `json:"existingSystem" validate:"required"`
	Timeline          string `json:"timeline" validate:"required"`
	WaterSource       string `json:"waterSource" validate:"required"`
	ElectricitySource string `json:"electricitySource" validate:"required"`
}

// UnmarshalJSON accepts occupants as either a string or a bare number.
func (q *QuestionnaireResponse) UnmarshalJSON(data []byte) error {
	type alias QuestionnaireResponse
	aux := struct {
		*alias
		Occupants json.RawMessage `json:"occupants"`
	}{alias: (*alias)(q)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	q.Occupants = ""
	if len(aux.Occupants) == 0 || string(aux.Occupants) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(aux.Occupants, &s); err == nil {
		q.Occupants = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(aux.Occupants, &n); err != nil {
		return err
	}
	if i, err := n.Int64(); err == nil {
		q.Occupants = strconv.FormatInt(i, 10)
		return nil
	}
	q.Occupants = n.String()
	return nil
}

// RequirementAnalysis holds the sizing figures derived from a questionnaire.
type RequirementAnalysis struct {
	EstimatedOccupants     int     `json:"estimated_occupants"`
	DailyHotWaterNeeded    float64 `json:"daily_hot_water_needed"`
	RequiredRoofType       string  `json:"required_roof_type"`
	MinimumCapacityLiters  float64 `json:"minimum_capacity_liters"`
	IdealCapacityLiters    float64 `json:"ideal_capacity_liters"`
	EffectiveSunlightHours float64 `json:"effective_sunlight_hours"`
}

// CandidateMatch is one similarity search hit.
type CandidateMatch struct {
	ID       string                 `json:"id"`
	Score    float64                `json:"score"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Text returns the snippet stored with the hit, falling back to its ID.
func (m CandidateMatch) Text() string {
	for _, key := range []string{"text", "description"} {
		if s, ok := m.Metadata[key].(string); ok && s != "" {
			return s
		}
	}
	return m.ID
}

// SystemName returns the product name stored with the hit, if any.
func (m CandidateMatch) SystemName() string {
	for _, key := range []string{"system_name", "name"} {
		if s, ok := m.Metadata[key].(string); ok {
			return s
		}
	}
	return ""
}
