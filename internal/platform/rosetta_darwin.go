package platform

import "golang.org/x/sys/unix"

// rosettaTranslated reports whether this process runs under Rosetta 2
func rosettaTranslated() bool {
	v, err := unix.SysctlUint32("sysctl.proc_translated")
	return err == nil && v == 1
}
