package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const debugTimeLayout = "15:04:05.000"

// debugLog is opened on the first write, so SXTETRIS_DEBUG_LOG may come from
// the .env file.
var debugLog struct {
	sync.Mutex
	enabled bool
	out     io.Writer
	closer  io.Closer
	started time.Time
}

func EnableDebugLogging(enabled bool) {
	debugLog.Lock()
	debugLog.enabled = enabled
	debugLog.Unlock()
}

func debugLogPath() string {
	if path := envString(envDebugLog); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), "sxtetris-debug.log")
}

// DebugLogf appends one line to the debug log under the app scope. It is a
// no-op unless debug logging was enabled.
func DebugLogf(format string, args ...any) {
	writeDebug("app", format, args...)
}

// debugScope returns a logger whose lines are tagged with scope.
func debugScope(scope string) func(format string, args ...any) {
	return func(format string, args ...any) {
		writeDebug(scope, format, args...)
	}
}

func writeDebug(scope, format string, args ...any) {
	debugLog.Lock()
	defer debugLog.Unlock()
	if !debugLog.enabled {
		return
	}
	if debugLog.out == nil {
		file, err := os.OpenFile(debugLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		debugLog.out, debugLog.closer = file, file
		debugLog.started = time.Now()
		_, _ = fmt.Fprintf(file, "--- sxtetris pid %d at %s\n", os.Getpid(), debugLog.started.Format(time.DateTime))
	}
	now := time.Now()
	message := strings.ReplaceAll(fmt.Sprintf(format, args...), "\n", " ")
	_, _ = fmt.Fprintf(debugLog.out, "%s +%.3fs [%s] %s\n",
		now.Format(debugTimeLayout), now.Sub(debugLog.started).Seconds(), scope, message)
}

// setDebugOutput sends the log to w instead of the log file.
func setDebugOutput(w io.Writer) {
	debugLog.Lock()
	defer debugLog.Unlock()
	debugLog.out, debugLog.closer = w, nil
	debugLog.started = time.Now()
}

func closeDebugLog() {
	debugLog.Lock()
	defer debugLog.Unlock()
	if debugLog.closer != nil {
		_ = debugLog.closer.Close()
	}
	debugLog.out, debugLog.closer = nil, nil
}
