package java

import (
	"bufio"
	"strings"
)

// Properties holds Java system properties reported by a JVM
type Properties map[string]string

// Get returns the property value or an empty string
func (p Properties) Get(key string) string {
	return p[key]
}

// ParseProperties reads the listing printed by `java -XshowSettings:properties -version`:
//
//	Property settings:
//	    java.home = /usr/lib/jvm/java-17
//	    java.library.path = /usr/java/packages/lib
//	        /usr/lib64
//
// Keys are indented by four spaces. Deeper-indented lines continue a multi-line
// value and are skipped; only the first value line is kept.
func ParseProperties(output string) Properties {
	props := make(Properties)
	inBlock := false

	scanner := bufio.NewScanner(strings.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if strings.TrimSpace(line) == "Property settings:" {
			inBlock = true
			continue
		}
		if !inBlock {
			continue
		}
		if strings.TrimSpace(line) == "" {
			// The listing ends at the first blank line
			break
		}

		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent == 0 {
			break
		}
		if indent > 4 {
			continue
		}

		key, value, found := strings.Cut(strings.TrimSpace(line), " = ")
		if !found {
			// Properties with an empty value print as "key = "
			key, found = strings.CutSuffix(strings.TrimSpace(line), " =")
			if !found {
				continue
			}
			value = ""
		}
		props[key] = strings.TrimSpace(value)
	}

	return props
}
