package session

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	encodingEnv = "PYTHONIOENCODING=utf-8"
	pumpEnvKey  = "RUNCELL_GUI_PUMP"
)

// buildEnv constructs the subprocess environment: the host environment with
// deterministic text encoding forced, the pump mode conveyed, and the
// interpreter's own binary directories prepended to the search path so that
// co-located tools resolve ahead of system ones.
func buildEnv(interpreter string, mode PumpMode) []string {
	env := os.Environ()
	prefix := strings.Join(binDirs(interpreter), string(os.PathListSeparator))

	patched := false
	for i, entry := range env {
		key, value, found := strings.Cut(entry, "=")
		if !found || !strings.EqualFold(key, "PATH") {
			continue
		}
		env[i] = key + "=" + prefix + string(os.PathListSeparator) + value
		patched = true
		break
	}
	if !patched {
		env = append(env, "PATH="+prefix)
	}
	env = append(env, encodingEnv, pumpEnvKey+"="+string(mode))
	return env
}

// binDirs returns the interpreter's directory plus its platform-specific
// sub-bin directory (Scripts on windows, bin elsewhere).
func binDirs(interpreter string) []string {
	dir := filepath.Dir(interpreter)
	sub := "bin"
	if runtime.GOOS == "windows" {
		sub = "Scripts"
	}
	return []string{dir, filepath.Join(dir, sub)}
}
