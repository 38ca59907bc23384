package recipebox

import (
	"fmt"
	"io"
	"path/filepath"
	"runtime"

	"github.com/davecgh/go-spew/spew"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Dump writes a labelled dump of v to w, prefixed with the caller's file and line.
func Dump(w io.Writer, label string, v ...any) {
	_, file, line, _ := runtime.Caller(1)
	fmt.Fprintf(w, "%s:%d: %s\n", filepath.Base(file), line, label)
	dumper.Fdump(w, v...)
}
