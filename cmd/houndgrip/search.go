package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"houndgrip/internal/domain"
	"houndgrip/internal/eventbus"
	"houndgrip/internal/query"
	"houndgrip/internal/results"
	"houndgrip/internal/ui/views"
)

func runSearch(c *cli.Context) error {
	pattern := c.Args().First()
	if pattern == "" {
		return cli.Exit("search needs a PATTERN", 2)
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := signalContext()
	defer cancel()

	// the model reports request failures as Error events
	var (
		mu      sync.Mutex
		lastErr string
	)
	s.bus.Subscribe(eventbus.EventError, func(e eventbus.DomainEvent) {
		if ev, ok := e.(eventbus.ErrorEvent); ok {
			mu.Lock()
			lastErr = ev.Message
			mu.Unlock()
		}
	})
	failure := func(err error) error {
		mu.Lock()
		defer mu.Unlock()
		if lastErr != "" {
			return cli.Exit(lastErr, 1)
		}
		return cli.Exit(err.Error(), 1)
	}

	res := results.New(s.client, s.bus, results.WithPreferences(s.prefs))
	if err := res.LoadRepos(ctx); err != nil {
		return failure(err)
	}

	repos := query.ParseRepos(c.String("repos"))
	if err := checkRepos(res, repos); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	params := res.ApplyPreferences(query.Params{
		Query:        pattern,
		IgnoreCase:   c.Bool("ignore-case"),
		Files:        c.String("files"),
		ExcludeFiles: c.String("exclude-files"),
		Repos:        res.SelectRepos(repos),
	})
	if err := query.Validate(params); err != nil {
		return cli.Exit(err.Error(), 2)
	}

	if err := res.Search(ctx, params); err != nil {
		return failure(err)
	}
	if c.Bool("all") {
		if err := loadAll(ctx, res); err != nil {
			return failure(err)
		}
	}

	shown, err := res.Filter(results.NewFilter(c.String("filter-include"), c.String("filter-exclude")))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	re, _ := query.CompileQuery(params.Query, params.IgnoreCase)
	printResults(c.App.Writer, res, shown, re, c.Bool("links"))

	if stats, ok := res.Stats(); ok && s.cfg.UISettings.ShowStats {
		fmt.Fprintln(c.App.ErrWriter, views.RenderStats(stats, len(shown), countFiles(shown)))
	}
	return nil
}

// checkRepos rejects names the server does not know, suggesting close matches
func checkRepos(res *results.Model, repos []string) error {
	valid := make(map[string]bool)
	for _, r := range res.ValidRepos(repos) {
		valid[r] = true
	}
	for _, r := range repos {
		if valid[r] {
			continue
		}
		msg := fmt.Sprintf("%s: %q", results.ErrUnknownRepo, r)
		if suggestions := res.Suggest(r, 3); len(suggestions) > 0 {
			msg += fmt.Sprintf(" (did you mean %s?)", strings.Join(suggestions, ", "))
		}
		return errors.New(msg)
	}
	return nil
}

// loadAll pages in every repository with more files on the server, one
// goroutine per repository.
func loadAll(ctx context.Context, res *results.Model) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range res.Results() {
		if !r.HasMore() {
			continue
		}
		repo := r.Repo
		g.Go(func() error {
			for {
				before := loaded(res, repo)
				err := res.LoadMore(gctx, repo, results.Filter{})
				switch {
				case errors.Is(err, results.ErrNothingToLoad):
					return nil
				case err != nil:
					return fmt.Errorf("%s: %w", repo, err)
				}
				if loaded(res, repo) <= before {
					return fmt.Errorf("%s: server returned no further files", repo)
				}
			}
		})
	}
	return g.Wait()
}

func loaded(res *results.Model, repo string) int {
	r, ok := res.ResultFor(repo)
	if !ok {
		return 0
	}
	return len(r.Matches)
}

// printResults writes each repository's files with their merged match blocks
func printResults(w io.Writer, res *results.Model, shown []*domain.RepoResult, re *regexp.Regexp, links bool) {
	renderer := views.NewResultRenderer(views.NewStyles(), re != nil)
	for _, r := range shown {
		if len(r.Matches) == 0 {
			continue
		}
		fmt.Fprintf(w, "%s  (%s of %s files)\n",
			res.RepoDisplayName(r.Repo),
			humanize.Comma(int64(len(r.Matches))),
			humanize.Comma(int64(r.FilesWithMatch)))

		for _, fm := range r.Matches {
			fmt.Fprintf(w, "  %s\n", fm.Filename)
			if links {
				line := 0
				if len(fm.Matches) > 0 {
					line = fm.Matches[0].LineNumber
				}
				if link, err := res.ResolveFileURL(r.Repo, fm.Filename, line, r.Rev); err == nil {
					fmt.Fprintf(w, "  %s\n", link)
				}
			}
			fmt.Fprintln(w, renderer.RenderBlocks(fm.Matches, re, "    "))
		}
		if r.HasMore() {
			fmt.Fprintf(w, "  … %s more files (use --all)\n", humanize.Comma(int64(r.FilesWithMatch-len(r.Matches))))
		}
		fmt.Fprintln(w)
	}
}

func countFiles(res []*domain.RepoResult) int {
	n := 0
	for _, r := range res {
		n += len(r.Matches)
	}
	return n
}
