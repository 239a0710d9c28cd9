package goplus

import (
	"runtime/debug"

	"github.com/utrading/utrading-liquidity-dashboard/pkg/logger"
)

// Recover 捕获 panic 并记录调用栈，需配合 defer 使用
func Recover() {
	if r := recover(); r != nil {
		logger.Error().
			Interface("panic", r).
			Str("stack", string(debug.Stack())).
			Msg("goroutine panic recovered")
	}
}
