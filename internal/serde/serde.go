// Package serde converts documents between the MongoDB wire representation
// (_id, {"$oid": ...}, {"$date": {"$numberLong": ...}}) and the application
// representation (plain id strings, time.Time values).
//
// Both directions walk the generic JSON value space produced by
// encoding/json: nil, bool, float64, json.Number, string, []any and
// map[string]any. Anything else is treated as an opaque leaf.
package serde

// ToApplication resolves every identifier and date marker in v and renames a
// string _id to id at each object's own level. The input is never mutated.
func ToApplication(v any) any {
	switch val := v.(type) {
	case string:
		if t, ok := ParseDate(val); ok {
			return t
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToApplication(item)
		}
		return out
	case map[string]any:
		if resolved, ok := unwrapMarker(val); ok {
			return resolved
		}
		return objectToApplication(val)
	default:
		return v
	}
}

func objectToApplication(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for key, prop := range obj {
		if resolved, ok := unwrapMarker(prop); ok {
			out[key] = resolved
			continue
		}
		out[key] = ToApplication(prop)
	}

	if id, ok := out[PrimaryKey].(string); ok {
		if _, exists := out[IDKey]; !exists {
			out[IDKey] = id
			delete(out, PrimaryKey)
		}
	}
	return out
}

// ToWireDocument is ToWire for a single root document.
func ToWireDocument(v any) any {
	return ToWire(v, 0)
}

// ToWire wraps identifier strings in {"$oid": ...}. An object's own
// identifier is written under _id when depth is 0 and under id below that.
// Pass rootDepth -1 when v is an array of documents.
func ToWire(v any, rootDepth int) any {
	switch val := v.(type) {
	case string:
		if IsObjectIDHex(val) {
			return map[string]any{OIDMarker: val}
		}
		return val
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = ToWire(item, rootDepth+1)
		}
		return out
	case map[string]any:
		return objectToWire(val, rootDepth)
	default:
		return v
	}
}

func objectToWire(obj map[string]any, depth int) map[string]any {
	out := make(map[string]any, len(obj))

	idKey, id, found := identifier(obj)
	target := IDKey
	if depth == 0 {
		target = PrimaryKey
	}
	if found {
		out[target] = map[string]any{OIDMarker: id}
	}

	for key, prop := range obj {
		if found && (key == idKey || key == target) {
			continue
		}
		out[key] = ToWire(prop, depth+1)
	}
	return out
}

// identifier picks the application id, falling back to a string _id.
func identifier(obj map[string]any) (string, string, bool) {
	if id, ok := obj[IDKey].(string); ok {
		return IDKey, id, true
	}
	if id, ok := obj[PrimaryKey].(string); ok {
		return PrimaryKey, id, true
	}
	return "", "", false
}
