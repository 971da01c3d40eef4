package sqlrepo

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores any value as a JSON text column.
type JSON[T any] struct {
	V T
}

func (j JSON[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.V)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSON[T]) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		var zero T
		j.V = zero
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("sqlrepo: cannot scan %T into JSON", src)
	}
	return json.Unmarshal(b, &j.V)
}
