// Package imports lists the packages that can be imported from a directory
// and adds import declarations to Go source.
package imports

import (
	"sort"
	"strings"
)

const vendorSegment = "/vendor/"

// Merge combines the packages reported by gopkgs with the vendored packages
// reported by govendor. A vendored copy of a package listed by govendor is
// shown under its unvendored path, and only once. Vendor paths that govendor
// does not know about are kept as they are. The result is sorted and free
// of duplicates and empty entries.
func Merge(pkgs, vendorPkgs []string) []string {
	seen := make(map[string]struct{}, len(pkgs))
	merged := make([]string, 0, len(pkgs))
	add := func(p string) {
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		merged = append(merged, p)
	}

	vendored := make(map[string]struct{}, len(vendorPkgs))
	for _, v := range vendorPkgs {
		if v != "" {
			vendored[v] = struct{}{}
		}
	}

	primary := make(map[string]struct{}, len(pkgs))
	for _, p := range pkgs {
		primary[p] = struct{}{}
	}

	for _, p := range pkgs {
		if p == "" {
			continue
		}
		if len(vendored) > 0 {
			// Only the first /vendor/ segment counts, so nested vendor
			// trees resolve to their outermost suffix.
			if idx := strings.Index(p, vendorSegment); idx > 0 {
				suffix := p[idx+len(vendorSegment):]
				if _, ok := vendored[suffix]; ok && suffix != "" {
					if _, listed := primary[suffix]; !listed {
						add(suffix)
					}
					continue
				}
			}
		}
		add(p)
	}

	sort.Strings(merged)
	return merged
}
