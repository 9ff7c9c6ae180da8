package recommendation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrNoJSON       = errors.New("no JSON object found")
	ErrUnparseable  = errors.New("response could not be parsed")
	fencedBlockExpr = regexp.MustCompile("(?s)```[ \t]*(?:json|JSON)?[ \t]*\r?\n?(.*?)```")
)

// llmSystem is one system as the model writes it.
type llmSystem struct {
	Name           string `json:"name"`
	ModelCode      string `json:"model_code"`
	Description    string `json:"description"`
	PriceCategory  string `json:"price_category"`
	Specifications struct {
		TankSize      string `json:"tank_size"`
		CollectorType string `json:"collector_type"`
		HeatOutput    string `json:"heat_output"`
		SuitableFor   string `json:"suitable_for"`
	} `json:"specifications"`
}

// llmRecommendation is the object the model is asked to return.
type llmRecommendation struct {
	PrimaryRecommendation    llmSystem   `json:"primary_recommendation"`
	AlternativeOptions       []llmSystem `json:"alternative_options"`
	WaterQualityRequirements []struct {
		Parameter   string `json:"parameter"`
		Requirement string `json:"requirement"`
	} `json:"water_quality_requirements"`
	AdditionalComponents    []string `json:"additional_components"`
	TechnicalSpecifications []struct {
		Parameter string `json:"parameter"`
		Value     string `json:"value"`
	} `json:"technical_specifications"`
	InstallationNotes []string `json:"installation_notes"`
	Warranty          *struct {
		Tank      string `json:"tank"`
		Collector string `json:"collector"`
		Parts     string `json:"parts"`
	} `json:"warranty"`
}

// parseStage is one pure extraction attempt over the raw model text.
type parseStage struct {
	name  string
	parse func(raw string) (*llmRecommendation, error)
}

const (
	StageFenced      = "fenced"
	StageLargestJSON = "largest_object"
	StageWhole       = "whole"
)

// firstPassStages run over the first response, in order.
var firstPassStages = []parseStage{
	{name: StageFenced, parse: parseFenced},
	{name: StageLargestJSON, parse: parseLargestObject},
	{name: StageWhole, parse: parseWhole},
}

// correctiveStages run over the corrective response, which must be plain JSON.
var correctiveStages = []parseStage{
	{name: StageWhole, parse: parseWhole},
}

// runStages returns the first successful stage result. The error lists every
// stage failure.
func runStages(stages []parseStage, raw string) (*llmRecommendation, string, error) {
	failures := make([]string, 0, len(stages))
	for _, st := range stages {
		rec, err := st.parse(raw)
		if err == nil {
			return rec, st.name, nil
		}
		failures = append(failures, fmt.Sprintf("%s: %v", st.name, err))
	}
	return nil, "", fmt.Errorf("%w: %s", ErrUnparseable, strings.Join(failures, "; "))
}

// decode accepts text only when it is a single JSON object matching the
// output schema.
func decode(text string) (*llmRecommendation, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoJSON
	}
	if err := validateSchema([]byte(text)); err != nil {
		return nil, err
	}
	var rec llmRecommendation
	if err := json.Unmarshal([]byte(text), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func parseFenced(raw string) (*llmRecommendation, error) {
	blocks := fencedBlockExpr.FindAllStringSubmatch(raw, -1)
	if len(blocks) == 0 {
		return nil, fmt.Errorf("%w: no fenced block", ErrNoJSON)
	}
	var lastErr error
	for _, b := range blocks {
		rec, err := decode(b[1])
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func parseLargestObject(raw string) (*llmRecommendation, error) {
	spans := objectSpans(raw)
	if len(spans) == 0 {
		return nil, fmt.Errorf("%w: no braces", ErrNoJSON)
	}
	var lastErr error
	for _, s := range spans {
		rec, err := decode(s)
		if err == nil {
			return rec, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func parseWhole(raw string) (*llmRecommendation, error) {
	return decode(raw)
}

// objectSpans lists candidate top-level {...} substrings, longest first: the
// JSON object starting at every '{' that decodes as one, plus the span from
// the first '{' to the last '}'. A stray brace in prose cannot hide a later
// object because every offset is tried on its own.
func objectSpans(raw string) []string {
	seen := map[string]bool{}
	var spans []string
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			spans = append(spans, s)
		}
	}

	for i := strings.IndexByte(raw, '{'); i >= 0; {
		dec := json.NewDecoder(strings.NewReader(raw[i:]))
		var obj json.RawMessage
		if err := dec.Decode(&obj); err == nil {
			add(raw[i : i+int(dec.InputOffset())])
		}
		next := strings.IndexByte(raw[i+1:], '{')
		if next < 0 {
			break
		}
		i += next + 1
	}

	if first, last := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); first >= 0 && last > first {
		add(raw[first : last+1])
	}

	sort.SliceStable(spans, func(i, j int) bool { return len(spans[i]) > len(spans[j]) })
	return spans
}
