package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/v0xg/resumefill/internal/executor"
)

const fillMappingSchema = `{
  "type": "object",
  "required": ["fills"],
  "properties": {
    "fills": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "fieldId": {"type": "string"},
          "value": {
            "anyOf": [
              {"type": "string"},
              {"type": "array"},
              {"type": "number"},
              {"type": "boolean"},
              {"type": "null"}
            ]
          },
          "reason": {"type": ["string", "null"]}
        }
      }
    }
  }
}`

var fillSchema = func() *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(fillMappingSchema))
	if err != nil {
		panic(fmt.Sprintf("compile fill mapping schema: %v", err))
	}
	return s
}()

// ParseFillMapping recovers {"fills":[...]} from a model completion. A
// response that is not JSON or does not have that shape is rejected as a
// whole.
func ParseFillMapping(text string) ([]executor.Instruction, error) {
	raw, err := ExtractRaw(text)
	if err != nil {
		return nil, err
	}

	res, err := fillSchema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMapping, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrBadMapping, strings.Join(msgs, "; "))
	}

	var mapping struct {
		Fills []executor.Instruction `json:"fills"`
	}
	if err := json.Unmarshal(raw, &mapping); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMapping, err)
	}
	return mapping.Fills, nil
}
