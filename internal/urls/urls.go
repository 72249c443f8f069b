// Package urls builds browsable links to matched files from a repository's url-pattern.
package urls

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"houndgrip/internal/domain"
)

// Defaults used by hound when a repository has no url-pattern
const (
	DefaultBaseURL = "{url}/blob/{rev}/{path}{anchor}"
	DefaultAnchor  = "#L{line}"
)

var (
	varPattern = regexp.MustCompile(`\{([A-Za-z]+)\}`)

	// git@host:project/repo, hg@host/project/repo and ssh://git@host:7999/project/repo
	sshPattern = regexp.MustCompile(`(git|hg)@(.*?)(:[0-9]+)?(:|/)(.*)(/)(.*)`)
)

// Parts are the variables available to a url-pattern
type Parts struct {
	URL      string
	Hostname string
	Port     string
	Project  string
	Repo     string
	Path     string
	Rev      string
	Anchor   string
}

func (p Parts) vars() map[string]string {
	return map[string]string{
		"url":      p.URL,
		"hostname": p.Hostname,
		"port":     p.Port,
		"project":  p.Project,
		"repo":     p.Repo,
		"path":     p.Path,
		"rev":      p.Rev,
		"anchor":   p.Anchor,
	}
}

// ExpandVars replaces {name} placeholders; unknown names are left as is
func ExpandVars(template string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(template, func(m string) string {
		if v, ok := vars[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

func pattern(info domain.RepoInfo) domain.URLPattern {
	p := domain.URLPattern{BaseURL: DefaultBaseURL, Anchor: DefaultAnchor}
	if info.URLPattern != nil {
		if info.URLPattern.BaseURL != "" {
			p.BaseURL = info.URLPattern.BaseURL
		}
		if info.URLPattern.Anchor != "" {
			p.Anchor = info.URLPattern.Anchor
		}
	}
	return p
}

// Split computes the template variables for a location; line <= 0 means no anchor.
// {hostname} is "//host" and {port} keeps its leading colon. For ssh and scp
// style urls {url} is rewritten to the //host/project/repo form.
func Split(info domain.RepoInfo, path string, line int, rev string) Parts {
	pat := pattern(info)
	u := strings.TrimSuffix(info.URL, ".git")
	filename := path[strings.LastIndex(path, "/")+1:]

	anchor := ""
	if line > 0 {
		anchor = ExpandVars(pat.Anchor, map[string]string{
			"line":     strconv.Itoa(line),
			"filename": filename,
		})
	}

	// wikis have no line anchors and serve pages without the .md suffix
	if strings.HasSuffix(u, ".wiki") {
		u = strings.TrimSuffix(u, ".wiki") + "/wiki"
		path = strings.TrimSuffix(path, ".md")
		anchor = ""
	}

	parts := Parts{URL: u, Path: path, Rev: rev, Anchor: anchor}
	if m := sshPattern.FindStringSubmatch(u); m != nil {
		parts.Hostname = "//" + m[2]
		parts.Port = m[3]
		parts.Project = m[5]
		parts.Repo = m[7]
		parts.URL = parts.Hostname + parts.Port + "/" + parts.Project + "/" + parts.Repo
	} else if pu, err := url.Parse(u); err == nil && pu.Host != "" && (pu.Scheme == "http" || pu.Scheme == "https") {
		parts.Hostname = "//" + pu.Hostname()
		if port := pu.Port(); port != "" {
			parts.Port = ":" + port
		}
		p := strings.Trim(pu.Path, "/")
		if i := strings.LastIndex(p, "/"); i >= 0 {
			parts.Project, parts.Repo = p[:i], p[i+1:]
		} else {
			parts.Repo = p
		}
	}
	return parts
}

// RepoURL returns a link to path (and optionally line) at rev
func RepoURL(info domain.RepoInfo, path string, line int, rev string) string {
	return ExpandVars(pattern(info).BaseURL, Split(info, path, line, rev).vars())
}
