package serde

import (
	"strconv"
	"time"

	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Wire-format key names.
const (
	IDKey            = "id"
	PrimaryKey       = "_id"
	OIDMarker        = "$oid"
	DateMarker       = "$date"
	NumberLongMarker = "$numberLong"
)

// IsObjectIDHex reports whether s is a syntactically valid ObjectID token.
func IsObjectIDHex(s string) bool {
	_, err := bson.ObjectIDFromHex(s)
	return err == nil
}

// singleKey returns the only entry of a one-key object.
func singleKey(v any) (string, any, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return "", nil, false
	}
	for k, inner := range obj {
		return k, inner, true
	}
	return "", nil, false
}

// ObjectIDMarker unwraps {"$oid": "<id>"}.
func ObjectIDMarker(v any) (string, bool) {
	key, inner, ok := singleKey(v)
	if !ok || key != OIDMarker {
		return "", false
	}
	id, ok := inner.(string)
	return id, ok
}

// DateMarkerValue unwraps {"$date": {"$numberLong": "<ms>"}} into a UTC time.
func DateMarkerValue(v any) (time.Time, bool) {
	key, inner, ok := singleKey(v)
	if !ok || key != DateMarker {
		return time.Time{}, false
	}
	key, raw, ok := singleKey(inner)
	if !ok || key != NumberLongMarker {
		return time.Time{}, false
	}

	digits, ok := raw.(string)
	if !ok {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.UnixMilli(ms).UTC(), true
}

// unwrapMarker resolves either marker form. The returned value is final and
// must not be walked again.
func unwrapMarker(v any) (any, bool) {
	if id, ok := ObjectIDMarker(v); ok {
		return id, true
	}
	if t, ok := DateMarkerValue(v); ok {
		return t, true
	}
	return nil, false
}

// ParseDate decides whether a plain string leaf is a date. Any string that
// one of the cast layouts accepts is converted: RFC3339 with or without
// fractional seconds, "2006-01-02", "02 Jan 2006", the RFC822/1123 family,
// and time-only forms such as "3:04PM" (which land on year 0).
//
// Bare years ("2024"), slash dates ("1/2/2024") and "Jan 2 2006" match no
// layout and stay strings.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := cast.StringToDate(s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
