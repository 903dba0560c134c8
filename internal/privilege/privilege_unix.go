//go:build !windows

package privilege

import "os"

const remediationHint = "re-run with sudo: sudo wikiops <command>"

// euidChecker treats effective UID zero as privileged.
type euidChecker struct{}

func newChecker() Checker {
	return euidChecker{}
}

func (euidChecker) Privileged() bool {
	return os.Geteuid() == 0
}
