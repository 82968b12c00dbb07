package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/rafiq-ai/rafiq/pkg/runbook"
)

var githubRepoRootPattern = regexp.MustCompile(`^/([^/]+)/([^/]+)/?$`)

// FetchURL ingests a GitHub repo/blob/tree URL or a generic HTTP(S) page,
// per spec.md §4.3 "URL ingestion". GitHub handling is delegated to
// pkg/runbook (same TTL-cached fetch the Runbook Resolver uses); generic
// URLs are fetched directly and HTML-stripped.
func (p *Processor) FetchURL(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: parse url: %w", err)
	}

	if parsed.Host == "github.com" || parsed.Host == "www.github.com" {
		return p.fetchGitHub(ctx, parsed, rawURL)
	}
	return p.fetchGeneric(ctx, rawURL)
}

func (p *Processor) fetchGitHub(ctx context.Context, parsed *url.URL, rawURL string) (*Result, error) {
	switch {
	case strings.Contains(parsed.Path, "/blob/"):
		content, err := p.runbooks.Resolve(ctx, rawURL)
		if err != nil {
			return nil, fmt.Errorf("fileprocessor: fetch github blob: %w", err)
		}
		return &Result{Class: ClassProjectFile, Text: content}, nil

	case strings.Contains(parsed.Path, "/tree/"):
		parts, err := runbook.ParseRepoURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("fileprocessor: parse github tree url: %w", err)
		}
		readmeURL := fmt.Sprintf("https://github.com/%s/%s/blob/%s/%s/README.md",
			parts.Owner, parts.Repo, parts.Ref, strings.Trim(parts.Path, "/"))
		content, err := p.runbooks.Resolve(ctx, readmeURL)
		if err != nil {
			return nil, fmt.Errorf("fileprocessor: fetch github subpath readme: %w", err)
		}
		return &Result{Class: ClassProjectFile, Text: content}, nil

	case githubRepoRootPattern.MatchString(parsed.Path):
		matches := githubRepoRootPattern.FindStringSubmatch(parsed.Path)
		owner, repo := matches[1], matches[2]
		for _, branch := range []string{"main", "master"} {
			readmeURL := fmt.Sprintf("https://github.com/%s/%s/blob/%s/README.md", owner, repo, branch)
			content, err := p.runbooks.Resolve(ctx, readmeURL)
			if err == nil {
				return &Result{Class: ClassProjectFile, Text: content}, nil
			}
		}
		return nil, fmt.Errorf("fileprocessor: no README found on main or master for %s/%s", owner, repo)

	default:
		return nil, fmt.Errorf("fileprocessor: unrecognised github url shape: %s", rawURL)
	}
}

func (p *Processor) fetchGeneric(ctx context.Context, rawURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: create request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fileprocessor: %s returned HTTP %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fileprocessor: read response: %w", err)
	}

	text := stripHTML(string(body))
	return &Result{Class: ClassInfoImage, Text: text}, nil
}

// stripHTML walks the parsed document tree and concatenates visible text
// nodes, skipping script/style content.
func stripHTML(doc string) string {
	node, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return doc
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			trimmed := strings.TrimSpace(n.Data)
			if trimmed != "" {
				b.WriteString(trimmed)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)
	return strings.TrimSpace(b.String())
}
