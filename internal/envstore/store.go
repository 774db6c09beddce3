package envstore

// Reader looks up variables in one scope.
type Reader interface {
	// Get returns the value of name and whether it is set at all.
	Get(name string) (string, bool, error)
}

// Store is a writable scope.
type Store interface {
	Reader
	Set(name, value string) error
	// Unset removes name. An absent variable is not an error; changed
	// reports whether anything was removed.
	Unset(name string) (changed bool, err error)
	// Notify tells running programs that the scope changed.
	Notify() error
}

// Scope names used in logs and reports.
const (
	ScopeProcess = "process"
	ScopeUser    = "user"
	ScopeMachine = "machine"
)
