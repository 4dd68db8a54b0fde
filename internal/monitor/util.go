package monitor

import "path/filepath"

func joinIfRelative(base, path string) string {
	if path == "" {
		return base
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func parentDir(path string) string {
	return filepath.Dir(path)
}
