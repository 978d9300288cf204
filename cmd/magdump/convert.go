package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/chazu/magpack/runtime"
)

// fromTOML converts a decoded TOML document to a runtime value graph.
// Table keys are emitted in sorted order so the stream is deterministic
// regardless of map iteration order.
func fromTOML(rt *runtime.Runtime, doc map[string]any) (runtime.Value, error) {
	return convertTable(rt, doc)
}

func convertTable(rt *runtime.Runtime, table map[string]any) (runtime.Value, error) {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	v := rt.NewDictValue()
	dict := runtime.ObjectFromValue(v).Dict()
	for _, k := range keys {
		elem, err := convertValue(rt, table[k])
		if err != nil {
			return runtime.Nil, fmt.Errorf("key %q: %w", k, err)
		}
		dict.Set(rt.NewStringEncoded(k, "UTF-8"), elem)
	}
	return v, nil
}

func convertValue(rt *runtime.Runtime, x any) (runtime.Value, error) {
	switch t := x.(type) {
	case string:
		// TOML documents are UTF-8 by definition.
		return rt.NewStringEncoded(t, "UTF-8"), nil
	case int64:
		return rt.Int(t), nil
	case float64:
		return runtime.FromFloat64(t), nil
	case bool:
		return runtime.FromBool(t), nil
	case time.Time:
		return rt.NewStringEncoded(t.Format(time.RFC3339), "UTF-8"), nil
	case []any:
		arr := rt.NewArray()
		obj := runtime.ObjectFromValue(arr)
		for i, e := range t {
			elem, err := convertValue(rt, e)
			if err != nil {
				return runtime.Nil, fmt.Errorf("index %d: %w", i, err)
			}
			obj.Append(elem)
		}
		return arr, nil
	case []map[string]any:
		arr := rt.NewArray()
		obj := runtime.ObjectFromValue(arr)
		for i, e := range t {
			elem, err := convertTable(rt, e)
			if err != nil {
				return runtime.Nil, fmt.Errorf("index %d: %w", i, err)
			}
			obj.Append(elem)
		}
		return arr, nil
	case map[string]any:
		return convertTable(rt, t)
	default:
		return runtime.Nil, fmt.Errorf("unsupported TOML value of type %T", x)
	}
}
