package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Meta is an opaque JSON object carried on versions and audit entries.
// It is validated only for being well-formed JSON, never for shape.
// It implements driver.Valuer and sql.Scanner so it round-trips through
// TEXT (SQLite) and JSONB (Postgres) columns.
type Meta map[string]interface{}

// Value serializes the map as JSON for storage. A nil map is stored as
// an empty object rather than SQL NULL.
func (m Meta) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal meta: %w", err)
	}
	return string(b), nil
}

// Scan deserializes a JSON column value into the map.
func (m *Meta) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*m = Meta{}
		return nil
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("scan meta: unsupported type %T", src)
	}
	if len(b) == 0 {
		*m = Meta{}
		return nil
	}
	return json.Unmarshal(b, m)
}

// Version is a named configuration artifact. At most one version is
// active system-wide at any time; the store's activation swap enforces
// the invariant.
type Version struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Active    bool      `json:"active" db:"active"`
	Meta      Meta      `json:"meta" db:"meta"`
}
