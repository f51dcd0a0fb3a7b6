package services

import (
	"encoding/json"
	"fmt"
	"math"

	"rijks-verifier/internal/core/domain"
)

// ---------------------------------------------------------------------------
// JSON shape assertions over decoded bodies. Each returns a
// *domain.ContractViolation naming the field path.
// ---------------------------------------------------------------------------

func decodeObject(body []byte) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, domain.Violation("body", "JSON object", fmt.Sprintf("unparseable (%v)", err))
	}
	if obj == nil {
		return nil, domain.Violation("body", "JSON object", "null")
	}
	return obj, nil
}

func fieldPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func jsonType(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case []interface{}:
		return "array"
	case map[string]interface{}:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func requirePresent(obj map[string]interface{}, prefix, key string) (interface{}, error) {
	val, ok := obj[key]
	if !ok {
		return nil, domain.Violation(fieldPath(prefix, key), "present", "missing")
	}
	return val, nil
}

func requireString(obj map[string]interface{}, prefix, key string) (string, error) {
	val, err := requirePresent(obj, prefix, key)
	if err != nil {
		return "", err
	}
	s, ok := val.(string)
	if !ok {
		return "", domain.Violation(fieldPath(prefix, key), "string", jsonType(val))
	}
	return s, nil
}

func requireNumber(obj map[string]interface{}, prefix, key string) (float64, error) {
	val, err := requirePresent(obj, prefix, key)
	if err != nil {
		return 0, err
	}
	n, ok := val.(float64)
	if !ok {
		return 0, domain.Violation(fieldPath(prefix, key), "number", jsonType(val))
	}
	return n, nil
}

func requireNonNegativeInt(obj map[string]interface{}, prefix, key string) (int, error) {
	n, err := requireNumber(obj, prefix, key)
	if err != nil {
		return 0, err
	}
	if n < 0 || n != math.Trunc(n) {
		return 0, domain.Violation(fieldPath(prefix, key), "non-negative integer", n)
	}
	return int(n), nil
}

func requireArray(obj map[string]interface{}, prefix, key string) ([]interface{}, error) {
	val, err := requirePresent(obj, prefix, key)
	if err != nil {
		return nil, err
	}
	arr, ok := val.([]interface{})
	if !ok {
		return nil, domain.Violation(fieldPath(prefix, key), "array", jsonType(val))
	}
	return arr, nil
}

func requireObject(obj map[string]interface{}, prefix, key string) (map[string]interface{}, error) {
	val, err := requirePresent(obj, prefix, key)
	if err != nil {
		return nil, err
	}
	m, ok := val.(map[string]interface{})
	if !ok {
		return nil, domain.Violation(fieldPath(prefix, key), "object", jsonType(val))
	}
	return m, nil
}

func requireNull(obj map[string]interface{}, prefix, key string) error {
	val, err := requirePresent(obj, prefix, key)
	if err != nil {
		return err
	}
	if val != nil {
		return domain.Violation(fieldPath(prefix, key), "null", jsonType(val))
	}
	return nil
}

// requireFields runs requirePresent for every key.
func requireFields(obj map[string]interface{}, prefix string, keys ...string) error {
	for _, key := range keys {
		if _, err := requirePresent(obj, prefix, key); err != nil {
			return err
		}
	}
	return nil
}
