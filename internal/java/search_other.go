//go:build !windows

package java

import "github.com/charmbracelet/log"

// registeredHomes is empty outside Windows: there is no registry to consult
func registeredHomes(*log.Logger) []string {
	return nil
}
