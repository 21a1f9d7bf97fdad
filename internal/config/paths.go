package config

import (
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// resolvePath expands ~, $VAR and, on Windows, %VAR% in p and makes the
// result absolute against root. An empty p stays empty.
func resolvePath(p, root string) string {
	if p == "" {
		return p
	}
	p = expandHome(expandVars(p))
	if root != "" && !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	return p
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !(runtime.GOOS == "windows" && strings.HasPrefix(p, `~\`)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

var percentVar = regexp.MustCompile(`%([^%\s]+)%`)

// expandVars substitutes environment variables. Unknown %VAR% references
// are left as written.
func expandVars(p string) string {
	p = os.ExpandEnv(p)
	if runtime.GOOS != "windows" || !strings.Contains(p, "%") {
		return p
	}
	return percentVar.ReplaceAllStringFunc(p, func(m string) string {
		if val, ok := os.LookupEnv(m[1 : len(m)-1]); ok {
			return val
		}
		return m
	})
}
