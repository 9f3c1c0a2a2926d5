package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/halcyon-systems/idshift/internal/identity"
	"github.com/halcyon-systems/idshift/internal/output"
)

// formatSize converts bytes to a human-readable size.
func formatSize(bytes int64) string {
	const (
		KB = 1024
		MB = 1024 * KB
	)

	switch {
	case bytes >= MB:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(MB))
	case bytes >= KB:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(KB))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// confirm prompts on stdin and returns true only for an explicit yes.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// printIdentity lists an identity set's persisted keys and values.
func printIdentity(out *output.Console, ids identity.Set) {
	for _, p := range ids.Pairs() {
		value := p.Value
		if value == "" {
			value = "(empty)"
		}
		out.Plain("  %-28s %s", p.Key, value)
	}
}
