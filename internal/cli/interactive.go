package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// pickPackage asks the user to choose one of pkgs. The answer may be a
// list number, an exact path, or a filter that narrows the list when it
// matches more than one entry. Empty input or EOF cancels.
func pickPackage(in io.Reader, out io.Writer, pkgs []string) (string, bool) {
	scanner := bufio.NewScanner(in)
	candidates := pkgs

	for {
		if len(candidates) == 0 {
			fmt.Fprintln(out, "No matching packages")
			candidates = pkgs
		}
		for i, p := range candidates {
			fmt.Fprintf(out, "%4d  %s\n", i+1, p)
		}
		fmt.Fprint(out, "Package to import (number, path or filter): ")

		if !scanner.Scan() {
			return "", false
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			return "", false
		}

		if n, err := strconv.Atoi(answer); err == nil {
			if n >= 1 && n <= len(candidates) {
				return candidates[n-1], true
			}
			fmt.Fprintf(out, "No entry %d\n", n)
			continue
		}

		var matches []string
		for _, p := range candidates {
			if p == answer {
				return p, true
			}
			if strings.Contains(p, answer) {
				matches = append(matches, p)
			}
		}
		if len(matches) == 1 {
			return matches[0], true
		}
		candidates = matches
	}
}
