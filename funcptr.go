package qf

import "reflect"

// funcPtr returns the code pointer backing a StateHandler value, used to
// compare two state handlers for identity. Go function values are not
// comparable with ==; reflect.Value.Pointer() is the idiomatic escape
// hatch for this, same as used for registering/deduplicating handler
// funcs in table-driven dispatch code.
func funcPtr(f StateHandler) uintptr {
	if f == nil {
		return 0
	}
	return reflect.ValueOf(f).Pointer()
}
