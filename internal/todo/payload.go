package todo

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"todo-app/models"
)

var ErrInvalidBody = errors.New("invalid request body")

const todoPayloadSchema = `{
	"type": "object",
	"properties": {
		"text": {"type": ["string", "null"]}
	}
}`

var payloadSchema = jsonschema.MustCompileString("todo-payload.json", todoPayloadSchema)

// decodePayload turns a request body into a field map. Bodies that are not
// JSON, or whose JSON value is falsy, count as an empty object.
func decodePayload(body []byte) (map[string]interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil || !truthy(v) {
		return map[string]interface{}{}, nil
	}
	if err := payloadSchema.Validate(v); err != nil {
		return nil, ErrInvalidBody
	}
	return v.(map[string]interface{}), nil
}

// ParseCreate extracts the trimmed text of a new todo. An absent or null
// text yields "".
func ParseCreate(body []byte) (string, error) {
	fields, err := decodePayload(body)
	if err != nil {
		return "", err
	}
	text, _ := fields["text"].(string)
	return strings.TrimSpace(text), nil
}

// ParsePatch extracts a partial update. A text key that is present but null
// becomes an empty string so that it fails validation like blank text.
func ParsePatch(body []byte) (models.TodoPatch, error) {
	var patch models.TodoPatch
	fields, err := decodePayload(body)
	if err != nil {
		return patch, err
	}

	if raw, ok := fields["text"]; ok {
		text, _ := raw.(string)
		text = strings.TrimSpace(text)
		patch.Text = &text
	}
	if raw, ok := fields["completed"]; ok {
		completed := truthy(raw)
		patch.Completed = &completed
	}
	return patch, nil
}

// truthy mirrors JSON-ish truthiness: false, 0, "", null and empty
// arrays or objects are false.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	default:
		return true
	}
}
