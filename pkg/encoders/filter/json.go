package filter

import (
	"encoding/json"
	"strings"

	"roost.dev/pkg/encoders/hex"
	"roost.dev/pkg/encoders/kind"
	"roost.dev/pkg/utils/errorf"
)

// UnmarshalJSON decodes a filter object, collecting "#x" keys into the tag
// constraint map. Unknown keys are ignored per protocol convention.
func (f *F) UnmarshalJSON(b []byte) (err error) {
	var raw map[string]json.RawMessage
	if err = json.Unmarshal(b, &raw); err != nil {
		return errorf.E("filter is not an object: %s", err.Error())
	}
	*f = F{}
	for key, val := range raw {
		switch key {
		case "ids":
			if f.IDs, err = decodeHexPrefixes(val, "ids"); err != nil {
				return
			}
		case "authors":
			if f.Authors, err = decodeHexPrefixes(val, "authors"); err != nil {
				return
			}
		case "kinds":
			var ks []int64
			if err = json.Unmarshal(val, &ks); err != nil {
				return errorf.E("kinds must be an integer array")
			}
			for _, k := range ks {
				if k < 0 || k > 65535 {
					return errorf.E("kind %d out of range", k)
				}
				f.Kinds = append(f.Kinds, kind.T(k))
			}
		case "since":
			f.Since = new(int64)
			if err = json.Unmarshal(val, f.Since); err != nil {
				return errorf.E("since must be an integer")
			}
		case "until":
			f.Until = new(int64)
			if err = json.Unmarshal(val, f.Until); err != nil {
				return errorf.E("until must be an integer")
			}
		case "limit":
			f.Limit = new(uint)
			if err = json.Unmarshal(val, f.Limit); err != nil {
				return errorf.E("limit must be a non-negative integer")
			}
		case "search":
			if err = json.Unmarshal(val, &f.Search); err != nil {
				return errorf.E("search must be a string")
			}
			f.hasSearch = true
		default:
			if strings.HasPrefix(key, "#") && len(key) > 1 {
				var vs []string
				if err = json.Unmarshal(val, &vs); err != nil {
					return errorf.E("%s must be a string array", key)
				}
				if f.Tags == nil {
					f.Tags = make(map[string][]string)
				}
				f.Tags[key[1:]] = vs
			}
		}
	}
	return nil
}

func decodeHexPrefixes(val json.RawMessage, field string) (
	out []string, err error,
) {
	if err = json.Unmarshal(val, &out); err != nil {
		return nil, errorf.E("%s must be a string array", field)
	}
	for _, p := range out {
		if len(p) > 64 {
			return nil, errorf.E("%s prefix longer than 64 chars", field)
		}
		if !hex.Valid(p) {
			return nil, errorf.E("%s prefix is not lowercase hex", field)
		}
	}
	return
}

// MarshalJSON emits the filter with canonical key order, mostly for logs
// and tests.
func (f *F) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	if len(f.IDs) > 0 {
		out["ids"] = f.IDs
	}
	if len(f.Authors) > 0 {
		out["authors"] = f.Authors
	}
	if len(f.Kinds) > 0 {
		out["kinds"] = f.Kinds
	}
	for name, vs := range f.Tags {
		out["#"+name] = vs
	}
	if f.Since != nil {
		out["since"] = *f.Since
	}
	if f.Until != nil {
		out["until"] = *f.Until
	}
	if f.Limit != nil {
		out["limit"] = *f.Limit
	}
	if f.hasSearch {
		out["search"] = f.Search
	}
	return json.Marshal(out)
}

// WithSearch sets the search term, marking it present even when empty.
func (f *F) WithSearch(term string) *F {
	f.Search = term
	f.hasSearch = true
	return f
}
