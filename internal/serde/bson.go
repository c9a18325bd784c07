package serde

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FromBSON converts a value decoded by the Mongo driver into the wire shape:
// ObjectIDs become {"$oid": hex} and datetimes become
// {"$date": {"$numberLong": ms}}. Documents and arrays are walked
// recursively; other scalars are passed through.
func FromBSON(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = FromBSON(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = FromBSON(item)
		}
		return out
	case map[string]any:
		return FromBSON(bson.M(val))
	case bson.A:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = FromBSON(item)
		}
		return out
	case []any:
		return FromBSON(bson.A(val))
	case bson.ObjectID:
		return map[string]any{OIDMarker: val.Hex()}
	case bson.DateTime:
		return dateWire(int64(val))
	case time.Time:
		return dateWire(val.UnixMilli())
	case bson.Null, bson.Undefined:
		return nil
	case int32:
		return int64(val)
	case bson.Decimal128:
		return val.String()
	default:
		return v
	}
}

func dateWire(ms int64) map[string]any {
	return map[string]any{
		DateMarker: map[string]any{NumberLongMarker: strconv.FormatInt(ms, 10)},
	}
}
