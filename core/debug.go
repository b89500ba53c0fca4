package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the platform output; no-op until a target sets one
	debugPrintln DebugWriter = func(string) {}

	// debugEnabled gates all debug output; toggled with set_debug
	debugEnabled bool
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes one debug line when debug output is enabled.
// It never affects control flow.
func DebugPrintln(msg string) {
	if debugEnabled {
		debugPrintln(msg)
	}
}
