package circles

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	perr "circlesync/internal/platform/errors"
)

// Row is one normalized result row keyed by column name
type Row map[string]any

// Str returns the column as a string, numbers are formatted
func (r Row) Str(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return ""
	default:
		b, _ := json.Marshal(v)
		return string(b)
	}
}

// Int64 returns the column as an integer, accepting numbers and numeric strings
func (r Row) Int64(col string) (int64, bool) {
	switch v := r[col].(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n, true
		}
		f, err := v.Float64()
		return int64(f), err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	}
	return 0, false
}

// Time returns the column as a UTC time
// unix seconds and RFC3339 strings are accepted
func (r Row) Time(col string) (time.Time, bool) {
	if n, ok := r.Int64(col); ok {
		return time.Unix(n, 0).UTC(), true
	}
	if s, ok := r[col].(string); ok {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalize turns a raw circles_query result into rows
// both columns/Columns and rows/Rows casings are accepted, rows may be arrays or objects
func normalize(raw json.RawMessage) ([]Row, error) {
	var top map[string]json.RawMessage
	if err := decode(raw, &top); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles result is not an object")
	}
	var cols []string
	if c := field(top, "columns"); c != nil {
		if err := decode(c, &cols); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles result columns")
		}
	}
	var items []json.RawMessage
	if rs := field(top, "rows"); rs != nil {
		if err := decode(rs, &items); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles result rows")
		}
	}

	out := make([]Row, 0, len(items))
	for i, it := range items {
		it = bytes.TrimSpace(it)
		if len(it) == 0 {
			continue
		}
		row := Row{}
		switch it[0] {
		case '[':
			var vals []any
			if err := decode(it, &vals); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles row %d", i)
			}
			for j, v := range vals {
				if j < len(cols) {
					row[cols[j]] = v
				}
			}
		case '{':
			if err := decode(it, (*map[string]any)(&row)); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeRemoteQuery, "circles row %d", i)
			}
		default:
			return nil, perr.RemoteQueryf("circles row %d has unexpected shape", i)
		}
		out = append(out, row)
	}
	return out, nil
}

func field(m map[string]json.RawMessage, name string) json.RawMessage {
	if v, ok := m[name]; ok {
		return v
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return nil
}

func decode(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
