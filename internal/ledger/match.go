package ledger

import "strings"

// Match correlates a locally stored file with the ledger's view of an
// identity's documents. The two systems share no identifier for a specific
// file, so reconciliation is best-effort and deliberately biased toward
// rejecting weak matches: a false negative blocks a disclosure, a false
// positive would corroborate the wrong document.
//
// Rules, first hit wins:
//  1. path rule: normalized storage path equality, or the ledger path ending
//     in "/"+local or in the local path verbatim (the tool reports absolute
//     paths while the database stores relative ones);
//  2. title rule: case-insensitive title equality, consulted only when no
//     candidate matched by path.
func Match(candidates []Document, title, storedPath string) (Document, bool) {
	local := NormalizePath(storedPath)
	if local != "" {
		for _, candidate := range candidates {
			remote := NormalizePath(candidate.FilePath)
			if remote == "" {
				continue
			}
			if remote == local ||
				strings.HasSuffix(remote, "/"+local) ||
				strings.HasSuffix(remote, local) {
				return candidate, true
			}
		}
	}

	wanted := strings.TrimSpace(title)
	if wanted == "" {
		return Document{}, false
	}
	for _, candidate := range candidates {
		if strings.EqualFold(strings.TrimSpace(candidate.Title), wanted) {
			return candidate, true
		}
	}
	return Document{}, false
}

// NormalizePath converts backslashes to forward slashes and trims whitespace
// so Windows-flavored tool output compares against POSIX storage paths.
func NormalizePath(p string) string {
	return strings.TrimSpace(strings.ReplaceAll(p, "\\", "/"))
}
