package metadata

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
)

func TestWebURL(t *testing.T) {
	tests := []struct {
		remote string
		want   string
		ok     bool
	}{
		{"https://github.com/example/plugin.git", "https://github.com/example/plugin", true},
		{"http://git.example.org/plugin", "http://git.example.org/plugin", true},
		{"git@github.com:example/plugin.git", "https://github.com/example/plugin", true},
		{"git@gitlab.com:group/sub/plugin", "https://gitlab.com/group/sub/plugin", true},
		{"ssh://git@github.com:22/example/plugin.git", "https://github.com/example/plugin", true},
		{"/srv/git/plugin.git", "", false},
		{"file:///srv/git/plugin.git", "", false},
	}
	for _, tt := range tests {
		got, ok := webURL(tt.remote)
		if got != tt.want || ok != tt.ok {
			t.Errorf("webURL(%q) = %q, %v; want %q, %v", tt.remote, got, ok, tt.want, tt.ok)
		}
	}
}

// initRepo creates a repository at dir with the given remotes.
func initRepo(t *testing.T, dir string, remotes map[string]string) {
	t.Helper()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	for name, u := range remotes {
		if _, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{u}}); err != nil {
			t.Fatal(err)
		}
	}
}

func TestGitRemoteURL(t *testing.T) {
	tests := []struct {
		name    string
		remotes map[string]string
		want    string
		ok      bool
	}{
		{"origin ssh", map[string]string{"origin": "git@github.com:example/plugins.git"}, "https://github.com/example/plugins", true},
		{
			"origin preferred",
			map[string]string{"alpha": "https://gitlab.com/fork/plugins.git", "origin": "https://github.com/example/plugins.git"},
			"https://github.com/example/plugins", true,
		},
		{
			"first by name",
			map[string]string{"upstream": "https://github.com/up/plugins", "mirror": "https://gitlab.com/mirror/plugins"},
			"https://gitlab.com/mirror/plugins", true,
		},
		{"no remote", nil, "", false},
		{"local remote only", map[string]string{"origin": "/srv/git/plugins.git"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := t.TempDir()
			initRepo(t, repo, tt.remotes)
			nested := filepath.Join(repo, "modules", "clustering")
			writeFile(t, filepath.Join(nested, "pom.xml"), "<project/>")

			got, ok := GitRemoteURL(nested)
			if got != tt.want || ok != tt.ok {
				t.Errorf("GitRemoteURL() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}

	if _, ok := GitRemoteURL(""); ok {
		t.Error("empty dir should not resolve")
	}
}
