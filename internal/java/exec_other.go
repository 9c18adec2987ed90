//go:build !unix

package java

import "os"

// Windows has no execute bit; existence is all we can check
func isExecutable(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
