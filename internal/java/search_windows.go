//go:build windows

package java

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"golang.org/x/sys/windows/registry"
)

// Registry keys under HKLM whose version sub-keys carry a JavaHome value
var javaRegistryKeys = []string{
	`SOFTWARE\JavaSoft\JDK`,
	`SOFTWARE\JavaSoft\JRE`,
	`SOFTWARE\JavaSoft\Java Development Kit`,
	`SOFTWARE\JavaSoft\Java Runtime Environment`,
	`SOFTWARE\Eclipse Adoptium\JDK`,
	`SOFTWARE\Eclipse Adoptium\JRE`,
	`SOFTWARE\Eclipse Foundation\JDK`,
	`SOFTWARE\Azul Systems\Zulu`,
}

// registeredHomes returns java homes registered by installers
func registeredHomes(logger *log.Logger) []string {
	homes := make([]string, 0)
	for _, path := range javaRegistryKeys {
		key, err := registry.OpenKey(registry.LOCAL_MACHINE, path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
		if err != nil {
			continue
		}

		names, err := key.ReadSubKeyNames(-1)
		if err != nil {
			logger.Debug("failed to enumerate registry key", "key", path, "err", err)
			key.Close()
			continue
		}

		for _, name := range names {
			if home, ok := readJavaHome(key, name); ok {
				homes = append(homes, filepath.Clean(home))
			}
		}
		key.Close()
	}
	return homes
}

func readJavaHome(parent registry.Key, name string) (string, bool) {
	sub, err := registry.OpenKey(parent, name, registry.QUERY_VALUE|registry.ENUMERATE_SUB_KEYS)
	if err != nil {
		return "", false
	}
	defer sub.Close()

	if home, _, err := sub.GetStringValue("JavaHome"); err == nil && home != "" {
		return home, true
	}

	// Adoptium nests the value one level deeper: <version>\hotspot\MSI\Path
	if msi, err := registry.OpenKey(sub, `hotspot\MSI`, registry.QUERY_VALUE); err == nil {
		defer msi.Close()
		if home, _, err := msi.GetStringValue("Path"); err == nil && home != "" {
			return home, true
		}
	}
	return "", false
}
