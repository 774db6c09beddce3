package envstore

import "sync"

// Memory is an in-memory Store used in tests and dry runs.
type Memory struct {
	mu        sync.Mutex
	vars      map[string]string
	fail      map[string]error
	notifyErr error
	notified  int
}

// NewMemory returns a Memory store seeded with vars.
func NewMemory(vars map[string]string) *Memory {
	m := &Memory{vars: make(map[string]string, len(vars)), fail: make(map[string]error)}
	for k, v := range vars {
		m.vars[k] = v
	}
	return m
}

func (m *Memory) Get(name string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[name]; err != nil {
		return "", false, err
	}
	v, ok := m.vars[name]
	return v, ok, nil
}

func (m *Memory) Set(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[name]; err != nil {
		return err
	}
	m.vars[name] = value
	return nil
}

func (m *Memory) Unset(name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[name]; err != nil {
		return false, err
	}
	if _, ok := m.vars[name]; !ok {
		return false, nil
	}
	delete(m.vars, name)
	return true, nil
}

func (m *Memory) Notify() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified++
	return m.notifyErr
}

// Fail makes every operation on name return err. A nil err clears it.
func (m *Memory) Fail(name string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.fail, name)
		return
	}
	m.fail[name] = err
}

// FailNotify makes Notify return err.
func (m *Memory) FailNotify(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifyErr = err
}

// Notifications returns how many times Notify was called.
func (m *Memory) Notifications() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notified
}

// Vars returns a copy of the stored variables.
func (m *Memory) Vars() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.vars))
	for k, v := range m.vars {
		out[k] = v
	}
	return out
}
