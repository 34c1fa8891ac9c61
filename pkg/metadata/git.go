package metadata

import (
	"cmp"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5"
)

var scpURL = regexp.MustCompile(`^[\w.-]+@([^:/]+):(.+?)(?:\.git)?$`)

// GitRemoteURL returns the web URL of the repository holding dir. The
// repository is found by walking up from dir; its "origin" remote is
// preferred, otherwise the first remote by name. SSH remotes such as
// git@host:owner/repo.git are rewritten to https://host/owner/repo.
func GitRemoteURL(dir string) (string, bool) {
	if dir == "" {
		return "", false
	}
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", false
	}
	remotes, err := repo.Remotes()
	if err != nil || len(remotes) == 0 {
		return "", false
	}
	slices.SortFunc(remotes, func(a, b *git.Remote) int {
		an, bn := a.Config().Name, b.Config().Name
		if an == git.DefaultRemoteName || bn == git.DefaultRemoteName {
			return cmpBool(bn == git.DefaultRemoteName, an == git.DefaultRemoteName)
		}
		return cmp.Compare(an, bn)
	})
	for _, r := range remotes {
		for _, u := range r.Config().URLs {
			if web, ok := webURL(u); ok {
				return web, true
			}
		}
	}
	return "", false
}

func cmpBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

func webURL(remote string) (string, bool) {
	remote = strings.TrimSpace(remote)
	if m := scpURL.FindStringSubmatch(remote); m != nil {
		return "https://" + m[1] + "/" + m[2], true
	}
	u, err := url.Parse(remote)
	if err != nil || u.Host == "" {
		return "", false
	}
	path := strings.TrimSuffix(strings.TrimPrefix(u.Path, "/"), ".git")
	switch u.Scheme {
	case "http", "https":
		return u.Scheme + "://" + u.Host + "/" + path, true
	case "ssh", "git":
		return "https://" + u.Hostname() + "/" + path, true
	}
	return "", false
}
