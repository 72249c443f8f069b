package urls

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"houndgrip/internal/domain"
)

func TestRepoURL(t *testing.T) {
	tests := []struct {
		name string
		info domain.RepoInfo
		path string
		line int
		rev  string
		want string
	}{
		{
			name: "github https with line",
			info: domain.RepoInfo{URL: "https://github.com/org/alpha.git"},
			path: "cmd/main.go",
			line: 12,
			rev:  "abc",
			want: "https://github.com/org/alpha/blob/abc/cmd/main.go#L12",
		},
		{
			name: "no line means no anchor",
			info: domain.RepoInfo{URL: "https://github.com/org/alpha"},
			path: "README.md",
			rev:  "main",
			want: "https://github.com/org/alpha/blob/main/README.md",
		},
		{
			name: "ssh style url",
			info: domain.RepoInfo{URL: "git@github.com:org/beta.git"},
			path: "x.go",
			line: 1,
			rev:  "r",
			want: "//github.com/org/beta/blob/r/x.go#L1",
		},
		{
			name: "custom pattern with filename anchor",
			info: domain.RepoInfo{
				URL: "https://git.example.com/team/gamma",
				URLPattern: &domain.URLPattern{
					BaseURL: "{url}/src/{rev}/{path}{anchor}",
					Anchor:  "#{filename}-{line}",
				},
			},
			path: "lib/util.py",
			line: 7,
			rev:  "deadbeef",
			want: "https://git.example.com/team/gamma/src/deadbeef/lib/util.py#util.py-7",
		},
		{
			name: "bitbucket server ssh with port",
			info: domain.RepoInfo{
				URL:        "ssh://git@bitbucket.example.com:7999/PROJ/jira.git",
				URLPattern: &domain.URLPattern{BaseURL: "https:{hostname}/projects/{project}/repos/{repo}/browse/{path}{anchor}"},
			},
			path: "a/b.java",
			line: 3,
			want: "https://bitbucket.example.com/projects/PROJ/repos/jira/browse/a/b.java#L3",
		},
		{
			name: "https url fills host and project variables",
			info: domain.RepoInfo{
				URL:        "https://gitlab.example.com:8443/group/sub/epsilon.git",
				URLPattern: &domain.URLPattern{BaseURL: "https:{hostname}{port}/{project}/-/tree/{rev}/{path}?repo={repo}"},
			},
			path: "go.mod",
			rev:  "v1",
			want: "https://gitlab.example.com:8443/group/sub/-/tree/v1/go.mod?repo=epsilon",
		},
		{
			name: "wiki drops anchor and md suffix",
			info: domain.RepoInfo{URL: "https://github.com/org/delta.wiki.git"},
			path: "Home.md",
			line: 4,
			rev:  "master",
			want: "https://github.com/org/delta/wiki/blob/master/Home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RepoURL(tt.info, tt.path, tt.line, tt.rev))
		})
	}
}

func TestExpandVarsLeavesUnknown(t *testing.T) {
	assert.Equal(t, "a-1-{nope}", ExpandVars("a-{x}-{nope}", map[string]string{"x": "1"}))
}

func TestSplitHTTPSURL(t *testing.T) {
	parts := Split(domain.RepoInfo{URL: "https://github.com/org/alpha.git"}, "main.go", 0, "abc")
	assert.Equal(t, Parts{
		URL:      "https://github.com/org/alpha",
		Hostname: "//github.com",
		Project:  "org",
		Repo:     "alpha",
		Path:     "main.go",
		Rev:      "abc",
	}, parts)
}
