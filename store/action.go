package store

import (
	"fmt"
	"strings"
)

// actionName is the bare type name of an action, used in logs.
func actionName(a any) string {
	name := fmt.Sprintf("%T", a)
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
