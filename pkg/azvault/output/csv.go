package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
)

// maxCSVItems bounds an export so a runaway listing cannot produce an
// unbounded file.
const maxCSVItems = 20000

// WriteCSV renders a slice of structs as CSV. Column order follows the JSON
// field order of the first item, so the file matches what the JSON output
// would show. Nested values are flattened to their JSON encoding.
func WriteCSV(w io.Writer, items any) error {
	v := reflect.ValueOf(items)
	if v.Kind() != reflect.Slice {
		return errors.New("csv output requires a slice")
	}
	if v.Len() > maxCSVItems {
		return fmt.Errorf("refusing to export %d items (limit %d)", v.Len(), maxCSVItems)
	}

	cw := csv.NewWriter(w)
	if v.Len() == 0 {
		cw.Flush()
		return cw.Error()
	}

	header, err := jsonFieldOrder(v.Index(0).Interface())
	if err != nil {
		return err
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := 0; i < v.Len(); i++ {
		blob, err := json.Marshal(v.Index(i).Interface())
		if err != nil {
			return err
		}
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(blob, &fields); err != nil {
			return err
		}
		record := make([]string, len(header))
		for j, key := range header {
			record[j] = cellValue(fields[key])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// jsonFieldOrder returns the object's keys in encoding order by walking the
// JSON token stream, since a map would lose it.
func jsonFieldOrder(item any) ([]string, error) {
	blob, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if tok != json.Delim('{') {
		return nil, errors.New("csv output requires a slice of objects")
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token in object: %v", tok)
		}
		keys = append(keys, key)
		// Consume the value so its tokens are not mistaken for keys.
		var discard json.RawMessage
		if err := dec.Decode(&discard); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func cellValue(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
