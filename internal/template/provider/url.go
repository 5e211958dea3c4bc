package provider

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

// Host abbreviations accepted in place of a full clone URL.
var abbreviations = []struct {
	prefix string
	base   string
}{
	{"gh:", "https://github.com/"},
	{"gl:", "https://gitlab.com/"},
	{"bb:", "https://bitbucket.org/"},
	{"sr:", "https://git.sr.ht/~"},
}

var (
	ownerRepoPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*/[A-Za-z0-9._-]+$`)
	scpPattern       = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9.-]+:.+$`)
)

// ExpandGitURL returns the clone URL for location and reports whether
// location looks like a git repository reference.
//
// Supported forms:
//   - https://host/owner/repo(.git), http://, ssh://, git://, file:// URLs
//   - git@host:owner/repo.git
//   - gh:owner/repo, gl:owner/repo, bb:owner/repo, sr:owner/repo
//   - owner/repo (GitHub)
func ExpandGitURL(location string) (string, bool) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", false
	}

	for _, a := range abbreviations {
		if rest, ok := strings.CutPrefix(location, a.prefix); ok {
			if !ownerRepoPattern.MatchString(strings.TrimSuffix(rest, ".git")) {
				return "", false
			}
			return a.base + rest, true
		}
	}

	if u, err := url.Parse(location); err == nil {
		switch u.Scheme {
		case "http", "https", "ssh", "git", "file":
			if u.Host == "" && u.Scheme != "file" {
				return "", false
			}
			return location, true
		}
	}

	if scpPattern.MatchString(location) {
		return location, true
	}
	if ownerRepoPattern.MatchString(location) {
		return "https://github.com/" + location, true
	}
	return "", false
}

// IsLocalPath reports whether location names an existing directory or is
// spelled as a filesystem path ("/", "./", "../", "~").
func IsLocalPath(location string) bool {
	if location == "" {
		return false
	}
	if info, err := os.Stat(location); err == nil && info.IsDir() {
		return true
	}
	for _, prefix := range []string{"/", "./", "../", "~"} {
		if strings.HasPrefix(location, prefix) {
			return true
		}
	}
	return location == "." || location == ".."
}

// RepoName returns the last path element of a clone URL without ".git".
func RepoName(cloneURL string) (string, error) {
	s := strings.TrimSuffix(strings.TrimRight(cloneURL, "/"), ".git")
	if i := strings.LastIndexAny(s, "/:~"); i >= 0 {
		s = s[i+1:]
	}
	if s == "" {
		return "", fmt.Errorf("cannot derive a repository name from %q", cloneURL)
	}
	return s, nil
}
