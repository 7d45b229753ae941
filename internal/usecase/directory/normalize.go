package directory

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/restodir/restodir/internal/domain"
	domrest "github.com/restodir/restodir/internal/domain/restaurant"
)

// normalizeRecord prepares an imported record for insertion: every
// grades[i].date becomes plain Unix milliseconds, a missing grades list
// becomes empty, and an _id that is not an ObjectID is dropped so the store
// assigns one. The input is not modified.
func normalizeRecord(rec domrest.RawRecord) (domrest.RawRecord, error) {
	out := make(domrest.RawRecord, len(rec))
	for k, v := range rec {
		out[k] = v
	}

	if _, ok := out["_id"].(primitive.ObjectID); !ok {
		delete(out, "_id")
	}

	id, err := recordID(out["restaurant_id"])
	if err != nil {
		return nil, err
	}
	out["restaurant_id"] = id

	raw, present := out["grades"]
	if !present || raw == nil {
		out["grades"] = []any{}
		return out, nil
	}
	items, ok := asSlice(raw)
	if !ok {
		return nil, fmt.Errorf("record %s: grades is %T: %w", id, raw, domain.ErrInvalidRecord)
	}

	grades := make([]any, 0, len(items))
	for i, item := range items {
		g, ok := asMap(item)
		if !ok {
			return nil, fmt.Errorf("record %s: grade %d is %T: %w", id, i, item, domain.ErrInvalidRecord)
		}
		ms, err := dateMillis(g["date"])
		if err != nil {
			return nil, fmt.Errorf("record %s: grade %d: %w", id, i, err)
		}
		ng := make(map[string]any, len(g))
		for k, v := range g {
			ng[k] = v
		}
		ng["date"] = ms
		grades = append(grades, ng)
	}
	out["grades"] = grades
	return out, nil
}

func recordID(v any) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			break
		}
		return id, nil
	case int32:
		return strconv.FormatInt(int64(id), 10), nil
	case int64:
		return strconv.FormatInt(id, 10), nil
	}
	return "", fmt.Errorf("restaurant_id %v: %w", v, domain.ErrInvalidRecord)
}

// dateMillis unwraps the date forms found in exported data: {"$date": n},
// {"$date": {"$numberLong": "n"}}, {"$date": "RFC3339"}, a decoded BSON
// datetime, or a plain number.
func dateMillis(v any) (int64, error) {
	switch d := v.(type) {
	case primitive.DateTime:
		return int64(d), nil
	case time.Time:
		return d.UnixMilli(), nil
	case int64:
		return d, nil
	case int32:
		return int64(d), nil
	case int:
		return int64(d), nil
	case float64:
		return int64(d), nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, d)
		if err != nil {
			return 0, fmt.Errorf("date %q: %w", d, domain.ErrInvalidRecord)
		}
		return t.UnixMilli(), nil
	}

	m, ok := asMap(v)
	if !ok {
		return 0, fmt.Errorf("date %v: %w", v, domain.ErrInvalidRecord)
	}
	if inner, ok := m["$date"]; ok {
		return dateMillis(inner)
	}
	if s, ok := m["$numberLong"].(string); ok {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("date %q: %w", s, domain.ErrInvalidRecord)
		}
		return n, nil
	}
	return 0, fmt.Errorf("date %v: %w", v, domain.ErrInvalidRecord)
}

// asMap accepts the map shapes produced by JSON and BSON decoders.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case primitive.M:
		return m, true
	case domrest.RawRecord:
		return m, true
	case primitive.D:
		out := make(map[string]any, len(m))
		for _, e := range m {
			out[e.Key] = e.Value
		}
		return out, true
	}
	return nil, false
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case primitive.A:
		return s, true
	}
	return nil, false
}
