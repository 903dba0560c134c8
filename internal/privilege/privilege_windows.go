//go:build windows

package privilege

import "golang.org/x/sys/windows"

const remediationHint = "open the terminal with 'Run as administrator' and retry"

// tokenChecker asks the access-control layer whether the process token
// belongs to the builtin Administrators group.
type tokenChecker struct{}

func newChecker() Checker {
	return tokenChecker{}
}

func (tokenChecker) Privileged() bool {
	var sid *windows.SID
	err := windows.AllocateAndInitializeSid(
		&windows.SECURITY_NT_AUTHORITY,
		2,
		windows.SECURITY_BUILTIN_DOMAIN_RID,
		windows.DOMAIN_ALIAS_RID_ADMINS,
		0, 0, 0, 0, 0, 0,
		&sid,
	)
	if err != nil {
		return false
	}
	defer windows.FreeSid(sid)

	member, err := windows.Token(0).IsMember(sid)
	if err != nil {
		return false
	}
	return member
}
