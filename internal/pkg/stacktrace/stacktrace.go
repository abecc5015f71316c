// Package stacktrace trims goroutine dumps down to this module's own frames.
package stacktrace

import "strings"

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" entries for every
// frame of stack that points into an internal package, in call order.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		line = strings.TrimSpace(line)
		idx := strings.Index(line, ".go:")
		if idx == -1 || !strings.Contains(line[:idx], marker) {
			continue
		}

		// drop the trailing " +0x1f" program counter offset
		if sp := strings.IndexByte(line[idx:], ' '); sp != -1 {
			line = line[:idx+sp]
		}

		paths = append(paths, line[strings.Index(line, marker)+1:])
	}

	return paths
}
