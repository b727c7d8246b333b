// internal/config/locations.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Validate checks that every location the daemon writes to is usable:
// solutions, workqueue and working_directory must be writable directories,
// and the log file must be appendable or creatable. The pid path is only
// required to be set.
func (l Locations) Validate() error {
	dirs := []struct{ key, path string }{
		{"locations.solutions", l.Solutions},
		{"locations.workqueue", l.WorkQueue},
		{"locations.working_directory", l.WorkingDirectory},
	}
	for _, d := range dirs {
		if err := writableDir(d.path); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfig, d.key, err)
		}
	}
	if l.Log != "" {
		if err := writableFile(l.Log); err != nil {
			return fmt.Errorf("%w: locations.log: %v", ErrConfig, err)
		}
	}
	if l.PID == "" {
		return fmt.Errorf("%w: locations.pid is not set", ErrConfig)
	}
	return nil
}

func writableDir(path string) error {
	if path == "" {
		return fmt.Errorf("not set")
	}
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	probe, err := os.CreateTemp(path, ".fealden-probe-*")
	if err != nil {
		return fmt.Errorf("%s is not writable: %v", path, err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func writableFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0)
		if err != nil {
			return fmt.Errorf("%s is not writable: %v", path, err)
		}
		return f.Close()
	}
	return writableDir(filepath.Dir(path))
}
