package privilege

// Checker reports whether the current process runs with the elevated
// permissions the deployment's operational policy requires. Implementations
// are fail-closed: any fault in the platform query means "not privileged".
// This is a blunt fail-fast gate, not a security boundary.
type Checker interface {
	Privileged() bool
}

// New returns the Checker for the platform the binary was built for.
func New() Checker {
	return newChecker()
}

// Hint returns the platform's remediation instruction for an unprivileged
// run.
func Hint() string {
	return remediationHint
}
