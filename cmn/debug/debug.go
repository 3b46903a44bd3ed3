// Package debug provides assertion helpers gated on the BLOCKVOYAGE_DEBUG
// environment variable, mirroring the teacher's cmn/debug (debug.Assert,
// debug.AssertNoErr); with the variable unset they return without checking.
package debug

import "os"

// enabled gates assertions the way the teacher's debug build tag does;
// here it's an env var so tests can flip it without a build-tag matrix.
var enabled = os.Getenv("BLOCKVOYAGE_DEBUG") != ""

func Assert(cond bool, args ...any) {
	if !enabled || cond {
		return
	}
	panic(assertMsg(args))
}

func AssertNoErr(err error) {
	if !enabled || err == nil {
		return
	}
	panic(err)
}

func assertMsg(args []any) string {
	if len(args) == 0 {
		return "assertion failed"
	}
	s, ok := args[0].(string)
	if !ok {
		return "assertion failed"
	}
	return s
}
