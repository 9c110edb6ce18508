package xerr

import (
	"runtime"
	"strconv"
	"strings"
)

// maxStackDepth 捕获的最大栈帧数。
const maxStackDepth = 32

// callers 捕获调用栈，skip 含义同 runtime.Callers。
// 输出格式与 runtime/debug.Stack 的帧部分一致：函数名一行，文件:行号缩进一行。
func callers(skip int) string {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteByte('\n')
		}
		if !more {
			break
		}
	}
	return b.String()
}
