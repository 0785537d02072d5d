package session

import (
	"encoding/json"
	"strconv"
)

// villageIDFields and villageNameFields define the priority order used to
// derive the selected village id and display name from a loose-shaped
// village record. Server and legacy payloads disagree on field names, so
// the first known field that holds a usable value wins.
var (
	villageIDFields   = []string{"villageId", "village_id", "id"}
	villageNameFields = []string{"villageName", "name", "village_name", "title"}
)

// normalizeVillage extracts the id and display name from a raw village
// record. ok is false when raw is not a JSON object; missing fields yield
// empty strings, not an error.
func normalizeVillage(raw []byte) (id, name string, ok bool) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil || record == nil {
		return "", "", false
	}
	return firstScalar(record, villageIDFields), firstScalar(record, villageNameFields), true
}

// firstScalar returns the first non-empty scalar among fields, rendered as
// a string. Numeric ids are accepted and formatted without an exponent.
func firstScalar(record map[string]any, fields []string) string {
	for _, field := range fields {
		switch v := record[field].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
