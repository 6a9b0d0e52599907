// Package crashlog records recovered panics and background errors in the
// audit trail so they survive the process.
package crashlog

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/EdibleTuber/void-mcp-server/internal/audit"
	"github.com/EdibleTuber/void-mcp-server/internal/logging"
)

// Outcomes written for crash entries.
const (
	OutcomePanic = "panic"
	OutcomeError = "error"
)

var (
	global   *audit.Store
	globalMu sync.Mutex
)

// Init sets the store crashes are written to. Call once at startup; a nil
// store turns persistence off again.
func Init(store *audit.Store) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = store
}

// LogPanic records a recovered panic with a stack trace.
// Safe to call even if Init() was never called (logs only).
func LogPanic(module string, r any, path string) {
	msg := fmt.Sprintf("%v", r)
	stack := make([]byte, 4096)
	n := runtime.Stack(stack, false)

	logging.L().Error("panic recovered", "module", module, "panic", msg, "stack", string(stack[:n]))
	insert(module, OutcomePanic, path, msg+"\n"+string(stack[:n]))
}

// LogError records an error from background work.
func LogError(module string, err error) {
	if err == nil {
		return
	}
	logging.L().Error("background error", "module", module, "error", err)
	insert(module, OutcomeError, "", err.Error())
}

func insert(module, outcome, path, message string) {
	globalMu.Lock()
	store := global
	globalMu.Unlock()

	if store == nil {
		return
	}
	_, _ = store.Add(context.Background(), audit.Entry{
		Operation: module,
		Path:      path,
		Outcome:   outcome,
		Message:   message,
	})
}
