package debug

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu      sync.RWMutex
	enabled bool
	noColor bool
	output  io.Writer = os.Stderr
	console io.Writer = newConsole()

	// Loggers derived from base keep following SetDebug, SetNoColor and
	// SetOutput because level is global and writes go through switchWriter.
	base = zerolog.New(switchWriter{}).With().Timestamp().Logger()
)

func init() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}

type switchWriter struct{}

func (switchWriter) Write(p []byte) (int, error) {
	mu.RLock()
	w := console
	mu.RUnlock()
	return w.Write(p)
}

func newConsole() io.Writer {
	return zerolog.ConsoleWriter{
		Out:        output,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
	}
}

// SetDebug enables or disables debug mode
func SetDebug(enable bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = enable
	if enable {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	}
}

// IsEnabled returns whether debug mode is enabled
func IsEnabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetNoColor enables or disables colored output
func SetNoColor(disable bool) {
	mu.Lock()
	defer mu.Unlock()
	noColor = disable
	console = newConsole()
}

// SetOutput redirects log output. Used by tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	console = newConsole()
}

// Logger returns a logger tagged with the given component name.
func Logger(component string) zerolog.Logger {
	return base.With().Str("component", component).Logger()
}

// Debug prints a debug message
func Debug(format string, args ...interface{}) {
	base.Debug().Msgf(format, args...)
}

// Warn logs a warning. Warnings are printed even when debug mode is off.
func Warn(format string, args ...interface{}) {
	base.Warn().Msgf(format, args...)
}

// DebugSection prints a section header for debug output
func DebugSection(section string) {
	base.Debug().Msg(fmt.Sprintf("=== %s ===", section))
}

// DebugValue prints key=value style debug info
func DebugValue(key string, value interface{}) {
	base.Debug().Interface(key, value).Msg("")
}

// DebugJSON prints structured data as JSON for debugging
func DebugJSON(key string, v interface{}) {
	if !IsEnabled() {
		return
	}

	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		Debug("Failed to marshal %s to JSON: %v", key, err)
		return
	}

	base.Debug().Msgf("%s:\n%s", key, string(jsonBytes))
}
