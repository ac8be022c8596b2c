package models

import (
	"database/sql/driver"
	"errors"

	"github.com/goccy/go-json"
)

// JSON is an opaque document stored in a jsonb column.
type JSON map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSON) Scan(value interface{}) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for JSON column")
	}
	return json.Unmarshal(data, j)
}

// String returns the value under key when it is a string.
func (j JSON) String(key string) string {
	if s, ok := j[key].(string); ok {
		return s
	}
	return ""
}
