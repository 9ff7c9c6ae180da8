package recommendation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// outputSchema is the JSON the model is asked to return. It is quoted in the
// prompt and checked against every parsed candidate.
const outputSchema = `{
  "type": "object",
  "required": ["primary_recommendation"],
  "properties": {
    "primary_recommendation": {"$ref": "#/definitions/system"},
    "alternative_options": {
      "type": "array",
      "items": {"$ref": "#/definitions/system"}
    },
    "water_quality_requirements": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["parameter", "requirement"],
        "properties": {
          "parameter": {"type": "string"},
          "requirement": {"type": "string"}
        }
      }
    },
    "additional_components": {"type": "array", "items": {"type": "string"}},
    "technical_specifications": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["parameter", "value"],
        "properties": {
          "parameter": {"type": "string"},
          "value": {"type": "string"}
        }
      }
    },
    "installation_notes": {"type": "array", "items": {"type": "string"}},
    "warranty": {
      "type": "object",
      "properties": {
        "tank": {"type": "string"},
        "collector": {"type": "string"},
        "parts": {"type": "string"}
      }
    }
  },
  "definitions": {
    "system": {
      "type": "object",
      "required": ["name", "specifications"],
      "properties": {
        "name": {"type": "string", "minLength": 1},
        "model_code": {"type": "string"},
        "description": {"type": "string"},
        "price_category": {"type": "string"},
        "specifications": {
          "type": "object",
          "required": ["tank_size", "collector_type"],
          "properties": {
            "tank_size": {"type": "string"},
            "collector_type": {"type": "string"},
            "heat_output": {"type": "string"},
            "suitable_for": {"type": "string"}
          }
        }
      }
    }
  }
}`

// promptSchemaExample is the shape shown to the model.
const promptSchemaExample = `{
  "primary_recommendation": {
    "name": "<exact catalog name>",
    "model_code": "<catalog code>",
    "description": "<why this system fits>",
    "specifications": {
      "tank_size": "<integer> Liters",
      "collector_type": "<Flat Plate | Evacuated Tube>",
      "heat_output": "<kW>",
      "suitable_for": "<N people>"
    }
  },
  "alternative_options": [
    {
      "name": "<exact catalog name>",
      "model_code": "<catalog code>",
      "description": "<trade-off versus the primary>",
      "price_category": "<High | Medium | Low>",
      "specifications": {"tank_size": "<integer> Liters", "collector_type": "<type>"}
    }
  ],
  "water_quality_requirements": [{"parameter": "<name>", "requirement": "<limit>"}],
  "additional_components": ["<component>"],
  "technical_specifications": [{"parameter": "<name>", "value": "<value>"}],
  "installation_notes": ["<note>"],
  "warranty": {"tank": "<term>", "collector": "<term>", "parts": "<term>"}
}`

var compiledSchema = mustCompileSchema(outputSchema)

func mustCompileSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("recommendation output schema: %v", err))
	}
	return schema
}

// validateSchema checks a JSON document against outputSchema.
func validateSchema(doc []byte) error {
	result, err := compiledSchema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
