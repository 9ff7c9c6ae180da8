package recommendation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	apperrors "solar-advisor/internal/common/errors"
	"solar-advisor/internal/common/llm"
	"solar-advisor/internal/common/logger"
	"solar-advisor/internal/common/metrics"
	"solar-advisor/internal/models"
	"solar-advisor/pkg/catalog"
)

// Outcome says how a recommendation was obtained.
type Outcome string

const (
	OutcomeParsed    Outcome = "parsed"
	OutcomeCorrected Outcome = "corrected"
	OutcomeFallback  Outcome = "fallback"
	OutcomeFailed    Outcome = "failed"
)

const systemInstructions = "You are a solar water heating specialist for Solarmax. " +
	"Recommend systems strictly from the product catalog provided and answer with a single JSON object."

const correctiveInstruction = "Your previous response was not valid JSON. Reformat it using only the fields " +
	"primary_recommendation, alternative_options, water_quality_requirements, additional_components, " +
	"technical_specifications, installation_notes and warranty. Return only the JSON object, with no prose and no code fences."

// Synthesizer asks the model for a recommendation and recovers a typed
// result from whatever text comes back.
type Synthesizer struct {
	llm         llm.Completer
	catalog     *catalog.Catalog
	callTimeout time.Duration
	logger      logger.Logger
}

// NewSynthesizer bounds each model call by callTimeout when it is positive.
func NewSynthesizer(completer llm.Completer, cat *catalog.Catalog, callTimeout time.Duration, log logger.Logger) *Synthesizer {
	return &Synthesizer{
		llm:         completer,
		catalog:     cat,
		callTimeout: callTimeout,
		logger:      log,
	}
}

// Synthesize returns a recommendation for the analysed questionnaire. Parse
// failures and timeouts end in the catalog fallback; only two consecutive
// hard invocation failures return an LLM_UNAVAILABLE error.
func (s *Synthesizer) Synthesize(ctx context.Context, analysis models.RequirementAnalysis, candidates []models.CandidateMatch, q models.QuestionnaireResponse) (*models.RecommendationResponse, Outcome, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemInstructions},
		{Role: llm.RoleUser, Content: s.BuildSynthesisPrompt(analysis, candidates, q)},
	}

	raw, firstErr := s.complete(ctx, messages)
	if firstErr == nil {
		rec, stage, err := runStages(firstPassStages, raw)
		if err == nil {
			metrics.ParseStageTotal.WithLabelValues(stage).Inc()
			return toResponse(rec), OutcomeParsed, nil
		}
		s.logger.Warn("Model response not parseable, requesting a corrected response", map[string]interface{}{
			"error":       err.Error(),
			"responseLen": len(raw),
		})
	} else {
		s.logger.Warn("Model call failed, retrying once", map[string]interface{}{
			"error": firstErr.Error(),
		})
	}

	// An unparseable answer is sent back for reformatting. A failed call has
	// nothing to reformat, so the original prompt is sent again.
	second := messages
	if firstErr == nil {
		second = append(append([]llm.Message(nil), messages...),
			llm.Message{Role: llm.RoleAssistant, Content: raw},
			llm.Message{Role: llm.RoleUser, Content: correctiveInstruction},
		)
	}

	raw2, secondErr := s.complete(ctx, second)
	if secondErr == nil {
		rec, _, err := runStages(correctiveStages, raw2)
		if err == nil {
			metrics.ParseStageTotal.WithLabelValues("corrective").Inc()
			return toResponse(rec), OutcomeCorrected, nil
		}
		s.logger.Warn("Corrected response not parseable, using catalog fallback", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if firstErr != nil && secondErr != nil && isHardFailure(firstErr) && isHardFailure(secondErr) {
		s.logger.Error("Model unavailable on both attempts", map[string]interface{}{
			"firstError":  firstErr.Error(),
			"secondError": secondErr.Error(),
		})
		return nil, OutcomeFailed, apperrors.NewLLMUnavailableError(secondErr)
	}

	if secondErr != nil {
		s.logger.Warn("Model call failed, using catalog fallback", map[string]interface{}{
			"error": secondErr.Error(),
		})
	}
	metrics.ParseStageTotal.WithLabelValues("fallback").Inc()
	return Fallback(analysis, q, s.catalog), OutcomeFallback, nil
}

func (s *Synthesizer) complete(ctx context.Context, messages []llm.Message) (string, error) {
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	return s.llm.Complete(ctx, messages)
}

// isHardFailure is a transport, auth or server failure. Timeouts and empty
// answers are soft.
func isHardFailure(err error) bool {
	if llm.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, llm.ErrEmptyResponse) {
		return false
	}
	return true
}

// BuildSynthesisPrompt renders the user message for the first model call.
func (s *Synthesizer) BuildSynthesisPrompt(analysis models.RequirementAnalysis, candidates []models.CandidateMatch, q models.QuestionnaireResponse) string {
	var parts []string

	parts = append(parts, "Customer requirements:")
	parts = append(parts, BuildPrompt(q))

	parts = append(parts, "\nSizing analysis:")
	parts = append(parts, fmt.Sprintf("- Estimated occupants: %d", analysis.EstimatedOccupants))
	parts = append(parts, fmt.Sprintf("- Daily hot water demand: %s", Liters(analysis.DailyHotWaterNeeded)))
	parts = append(parts, fmt.Sprintf("- Minimum tank capacity: %s", Liters(analysis.MinimumCapacityLiters)))
	parts = append(parts, fmt.Sprintf("- Recommended tank capacity: %s", Liters(analysis.IdealCapacityLiters)))
	parts = append(parts, fmt.Sprintf("- Effective sunlight hours: %.1f per day", analysis.EffectiveSunlightHours))
	if analysis.RequiredRoofType != "" {
		parts = append(parts, fmt.Sprintf("- Roof / existing system to accommodate: %s", analysis.RequiredRoofType))
	}

	if len(candidates) > 0 {
		parts = append(parts, "\nSimilar products from past installations:")
		for _, c := range candidates {
			parts = append(parts, fmt.Sprintf("- %s (score %.3f)", c.Text(), c.Score))
		}
	}

	parts = append(parts, "\nProduct catalog (name: model code). Use these names exactly:")
	parts = append(parts, strings.TrimRight(s.catalog.Table(), "\n"))

	parts = append(parts, "\nInstructions:")
	parts = append(parts, "- Recommend one primary system and exactly 2 alternative options, all from the catalog above.")
	parts = append(parts, "- Copy each name and model code from the catalog verbatim.")
	parts = append(parts, "- Give tank sizes as a whole number of liters, e.g. \"240 Liters\".")
	parts = append(parts, "- Give each alternative a price_category of High, Medium or Low.")
	parts = append(parts, "- Do not include any cost, price, savings or ROI figures.")
	if IsBorehole(q) {
		parts = append(parts, "- The water source is a borehole. Prefer indirect systems (model codes ending in \"I\"), which tolerate hard water.")
	}

	parts = append(parts, "\nRespond with only a JSON object of this form:")
	parts = append(parts, promptSchemaExample)

	return strings.Join(parts, "\n")
}

func toResponse(rec *llmRecommendation) *models.RecommendationResponse {
	systems := []models.RecommendedSystem{toSystem(rec.PrimaryRecommendation, true)}
	for _, alt := range rec.AlternativeOptions {
		systems = append(systems, toSystem(alt, false))
	}

	resp := &models.RecommendationResponse{
		RecommendedSystems:       systems,
		WaterQualityRequirements: []models.WaterQualityRequirement{},
		AdditionalComponents:     []string{},
		TechnicalSpecifications:  []models.TechnicalSpecification{},
		InstallationNotes:        []string{},
	}
	for _, w := range rec.WaterQualityRequirements {
		resp.WaterQualityRequirements = append(resp.WaterQualityRequirements,
			models.WaterQualityRequirement{Parameter: w.Parameter, Requirement: w.Requirement})
	}
	for _, t := range rec.TechnicalSpecifications {
		resp.TechnicalSpecifications = append(resp.TechnicalSpecifications,
			models.TechnicalSpecification{Parameter: t.Parameter, Value: t.Value})
	}
	resp.AdditionalComponents = append(resp.AdditionalComponents, rec.AdditionalComponents...)
	resp.InstallationNotes = append(resp.InstallationNotes, rec.InstallationNotes...)
	if rec.Warranty != nil {
		resp.Warranty = &models.Warranty{
			Tank:      rec.Warranty.Tank,
			Collector: rec.Warranty.Collector,
			Parts:     rec.Warranty.Parts,
		}
	}
	return resp
}

func toSystem(in llmSystem, primary bool) models.RecommendedSystem {
	out := models.RecommendedSystem{
		Name:        in.Name,
		ModelCode:   in.ModelCode,
		Description: in.Description,
		IsPrimary:   primary,
		Specifications: models.SystemSpecifications{
			TankSize:      normalizeTankSize(in.Specifications.TankSize),
			CollectorType: in.Specifications.CollectorType,
			HeatOutput:    in.Specifications.HeatOutput,
			SuitableFor:   in.Specifications.SuitableFor,
		},
	}
	if !primary {
		out.PriceCategory = normalizePriceCategory(in.PriceCategory)
	}
	return out
}

// normalizePriceCategory maps a tier onto High, Medium or Low ignoring case.
// Anything else is dropped.
func normalizePriceCategory(s string) string {
	for _, tier := range []string{models.PriceHigh, models.PriceMedium, models.PriceLow} {
		if strings.EqualFold(strings.TrimSpace(s), tier) {
			return tier
		}
	}
	return ""
}

var tankSizeExpr = regexp.MustCompile(`(?i)^\s*(\d+(?:\.\d+)?)\s*(l|ltrs?|litres?|liters?)?\.?\s*$`)

// normalizeTankSize rewrites a bare or fractional litre figure as whole
// litres. Anything else is kept verbatim.
func normalizeTankSize(s string) string {
	m := tankSizeExpr.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return s
	}
	return Liters(v)
}
