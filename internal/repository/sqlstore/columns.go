package sqlstore

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

var timeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
}

// timestamp scans DATETIME/TIMESTAMPTZ columns. SQLite hands back text for
// expressions without a declared type, e.g. RETURNING columns.
type timestamp struct {
	t *time.Time
}

func (ts timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.t = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	case nil:
		*ts.t = time.Time{}
		return nil
	default:
		return fmt.Errorf("unsupported timestamp type %T", src)
	}
}

func (ts timestamp) parse(s string) error {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts.t = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("parse timestamp %q", s)
}

// tags stores a string list as a JSON array.
type tags struct {
	v *[]string
}

func (t tags) Value() (driver.Value, error) {
	list := *t.v
	if list == nil {
		list = []string{}
	}
	data, err := json.Marshal(list)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

func (t tags) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	case nil:
		*t.v = []string{}
		return nil
	default:
		return fmt.Errorf("unsupported tags type %T", src)
	}

	list := []string{}
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	if list == nil {
		list = []string{}
	}
	*t.v = list
	return nil
}
