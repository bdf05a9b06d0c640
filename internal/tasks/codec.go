package tasks

import (
	"bytes"
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/idilsaglam/tada/internal/model"
)

// taskListSchema describes a stored collection: an array of task objects.
// Titles may be empty here; emptiness is only enforced on user input.
const taskListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "isDone", "title", "description"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "isDone": {"type": "boolean"},
      "title": {"type": "string"},
      "description": {"type": "string"}
    }
  }
}`

var schema = jsonschema.MustCompileString("tasks.schema.json", taskListSchema)

// encode serializes the full collection in order.
func encode(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return b, nil
}

// decode parses a stored collection. Anything that is not a well-formed
// array of tasks is an error.
func decode(blob []byte) ([]model.Task, error) {
	if len(bytes.TrimSpace(blob)) == 0 {
		return nil, fmt.Errorf("empty blob")
	}
	var doc any
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var out []model.Task
	if err := json.Unmarshal(blob, &out); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}
	return out, nil
}
