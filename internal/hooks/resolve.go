package hooks

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Resolve finds the program a hook command will run. Bare names are looked
// up in PATH; paths are taken relative to dir, the task file's directory.
func Resolve(command, dir string) (string, error) {
	if command == "" {
		return "", errors.New("hook command is empty")
	}
	if !strings.ContainsAny(command, `/\`) {
		return exec.LookPath(command)
	}

	path := command
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if !isExecutable(path, info.Mode()) {
		return "", fmt.Errorf("%s is not executable", path)
	}
	return path, nil
}

func isExecutable(path string, mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		return windowsExecutableExtensions()[strings.ToLower(filepath.Ext(path))]
	}
	return mode&0111 != 0
}

// windowsExecutableExtensions returns lowercase extensions (with leading dot)
// parsed from PATHEXT, or a default set if PATHEXT is unset.
func windowsExecutableExtensions() map[string]bool {
	exts := map[string]bool{}
	pathext := os.Getenv("PATHEXT")
	if pathext == "" {
		pathext = ".COM;.EXE;.BAT;.CMD"
	}
	for _, ext := range strings.Split(pathext, ";") {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[strings.ToLower(ext)] = true
	}
	return exts
}
