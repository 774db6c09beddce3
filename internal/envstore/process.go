package envstore

import (
	"fmt"
	"os"
)

// Process is the environment of the running process.
type Process struct{}

// NewProcess returns the process-scope store.
func NewProcess() Process { return Process{} }

func (Process) Get(name string) (string, bool, error) {
	v, ok := os.LookupEnv(name)
	return v, ok, nil
}

func (Process) Set(name, value string) error {
	if err := os.Setenv(name, value); err != nil {
		return fmt.Errorf("setting %s: %w", name, err)
	}
	return nil
}

func (Process) Unset(name string) (bool, error) {
	if _, ok := os.LookupEnv(name); !ok {
		return false, nil
	}
	if err := os.Unsetenv(name); err != nil {
		return false, fmt.Errorf("unsetting %s: %w", name, err)
	}
	return true, nil
}

// Notify is a no-op; child processes inherit the environment at spawn.
func (Process) Notify() error { return nil }
