package gotemplate

import (
	"strings"

	"github.com/flosch/pongo2/v6"
)

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("contains") {
		_ = pongo2.RegisterFilter("contains", filterContains)
	}
	if !pongo2.FilterExists("attr_if") {
		_ = pongo2.RegisterFilter("attr_if", filterAttrIf)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterContains reports whether the list input holds param, comparing
// string forms: {{ role_ids|contains:role.value }}.
func filterContains(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || param == nil {
		return pongo2.AsValue(false), nil
	}
	needle := param.String()
	if in.IsString() {
		return pongo2.AsValue(in.String() == needle), nil
	}
	found := false
	if in.CanSlice() {
		in.Iterate(func(idx, count int, key, value *pongo2.Value) bool {
			if key.String() == needle {
				found = true
				return false
			}
			return true
		}, func() {})
		return pongo2.AsValue(found), nil
	}
	return pongo2.AsValue(in.String() == needle), nil
}

// filterAttrIf emits the boolean attribute named by param when the input is
// truthy: <input {{ opt.checked|attr_if:"checked" }}>.
func filterAttrIf(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in == nil || param == nil || !in.IsTrue() {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(param.String()), nil
}
