package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/dropbinge/dropbinge/internal/api"
	"github.com/dropbinge/dropbinge/internal/auth"
	"github.com/dropbinge/dropbinge/internal/browse"
	"github.com/dropbinge/dropbinge/internal/cache"
	"github.com/dropbinge/dropbinge/internal/config"
	"github.com/dropbinge/dropbinge/internal/domain"
	"github.com/dropbinge/dropbinge/internal/follow"
	"github.com/dropbinge/dropbinge/internal/log"
	"github.com/dropbinge/dropbinge/internal/search"
	"github.com/dropbinge/dropbinge/internal/store"
	"github.com/dropbinge/dropbinge/internal/tmdb"
)

// Version is set at build time via -ldflags
var Version = "dev"

const usage = `dropbinge - follow movies and TV, get notified when they drop

Usage:
  dropbinge login                          log in to your account
  dropbinge logout                         forget the saved session
  dropbinge follow <movie|tv> <id> [-season N]
  dropbinge unfollow <key>
  dropbinge follows [-filter <query>]      list what you follow
  dropbinge retry <key>                    re-fetch details for a placeholder
  dropbinge browse <media> <list> [-page N] [-refresh]
  dropbinge search <query>
  dropbinge version
`

// app bundles the wired services for command handlers.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	follows  *follow.Store
	intents  *follow.IntentStore
	browser  *browse.Service
	searcher *search.Service
	authFlow *auth.Flow
}

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return nil
	}

	if args[0] == "version" {
		fmt.Printf("dropbinge %s\n", Version)
		return nil
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting dropbinge", "version", Version, "command", args[0])

	// Open the local store
	kv, err := store.Open(cfg.Cache.Dir, cfg.Service.URL)
	if err != nil {
		logger.Warn("local store unavailable, continuing without persistence", "error", err)
		kv, _ = store.Open("", "")
	}
	defer kv.Close()

	// Wire services
	apiClient := api.NewClient(cfg.Service.URL, func() string { return cfg.Service.Token }, logger)
	catalog := tmdb.NewClient(apiClient, logger)
	hydrator := follow.NewHydrator(catalog, logger)
	guest := follow.NewGuestAdapter(kv, logger)
	remote := follow.NewRemoteAdapter(apiClient, logger)
	follows := follow.NewStore(cfg, guest, remote, hydrator, logger)
	browseCache := cache.NewBrowseCache(kv, cache.DefaultTTL, logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		follows:  follows,
		intents:  follow.NewIntentStore(kv),
		browser:  browse.NewService(catalog, browseCache, logger),
		searcher: search.NewService(catalog, search.NewHistory(kv), logger),
		authFlow: auth.NewFlow(auth.NewClient(apiClient, logger), logger),
	}

	ctx := context.Background()

	switch args[0] {
	case "login":
		return a.cmdLogin(ctx)
	case "logout":
		return a.cmdLogout()
	case "follow":
		return a.cmdFollow(ctx, args[1:])
	case "unfollow":
		return a.cmdUnfollow(ctx, args[1:])
	case "follows":
		return a.cmdFollows(ctx, args[1:])
	case "retry":
		return a.cmdRetry(ctx, args[1:])
	case "browse":
		return a.cmdBrowse(ctx, args[1:])
	case "search":
		return a.cmdSearch(ctx, args[1:])
	default:
		fmt.Print(usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) cmdLogin(ctx context.Context) error {
	session, err := a.authFlow.Run(ctx)
	if err != nil {
		return err
	}
	if err := config.SaveSession(session.Token, session.User.Email); err != nil {
		return err
	}
	a.cfg.Service.Token = session.Token

	// Replay a follow captured before the login.
	if intent := a.intents.Get(); intent != nil {
		item, err := a.follows.Add(ctx, intent.Target())
		if err != nil {
			a.logger.Warn("failed to replay pending follow", "error", err)
		} else {
			fmt.Printf("Now following %s\n", item.Title)
			a.intents.Clear()
		}
	}
	return nil
}

func (a *app) cmdLogout() error {
	if err := config.ClearSession(); err != nil {
		return err
	}
	a.cfg.Service.Token = ""
	fmt.Println("Logged out.")
	return nil
}

func (a *app) cmdFollow(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: dropbinge follow <movie|tv> <id> [-season N]")
	}
	fs := flag.NewFlagSet("follow", flag.ContinueOnError)
	season := fs.Int("season", -1, "season number (tv only)")
	if err := parseArgsAfter(fs, args, 2); err != nil {
		return err
	}

	mediaType := domain.MediaType(args[0])
	if mediaType != domain.MediaTypeMovie && mediaType != domain.MediaTypeTV {
		return fmt.Errorf("media type must be movie or tv")
	}
	tmdbID, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("id must be a number: %w", err)
	}

	target := domain.FollowTarget{MediaType: mediaType, TMDBID: tmdbID}
	if *season >= 0 {
		if mediaType != domain.MediaTypeTV {
			return fmt.Errorf("-season only applies to tv follows")
		}
		target.SeasonNumber = season
	}

	item, err := a.follows.Add(ctx, target)
	if errors.Is(err, domain.ErrAuthFailed) {
		// Keep the action so the next login replays it.
		a.intents.Set(follow.Intent{
			TargetType:   target.TargetType(),
			MediaType:    target.MediaType,
			TMDBID:       target.TMDBID,
			SeasonNumber: target.SeasonNumber,
		})
		return fmt.Errorf("session expired; run `dropbinge login` to finish following")
	}
	if errors.Is(err, domain.ErrAlreadyFollowing) {
		fmt.Println("Already following.")
		return nil
	}
	if err != nil {
		return err
	}

	a.searcher.Remember(domain.TitleSummary{
		ID:           item.TMDBID,
		MediaType:    string(item.MediaType),
		Title:        item.Title,
		PosterPath:   item.PosterPath,
		Date:         item.Meta.Date,
		SeasonNumber: item.SeasonNumber,
	})

	fmt.Printf("Following %s (%s)\n", item.Title, item.Key)
	if item.Meta.Note != "" {
		fmt.Printf("Details unavailable right now; run `dropbinge retry %s` later.\n", item.Key)
	}
	return nil
}

func (a *app) cmdUnfollow(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dropbinge unfollow <key>")
	}
	if err := a.follows.Remove(ctx, args[0]); err != nil {
		return err
	}
	fmt.Printf("Unfollowed %s\n", args[0])
	return nil
}

func (a *app) cmdFollows(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("follows", flag.ContinueOnError)
	filter := fs.String("filter", "", "fuzzy filter by title")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, err := a.follows.Refresh(ctx)
	if err != nil {
		if len(items) == 0 {
			return err
		}
		fmt.Println("(refresh failed, showing last known list)")
	}
	items = search.FilterFollows(*filter, items)

	if len(items) == 0 {
		fmt.Println("Not following anything yet.")
		return nil
	}
	for _, item := range items {
		printFollow(item)
	}
	return nil
}

func (a *app) cmdRetry(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: dropbinge retry <key>")
	}
	key := args[0]

	items, err := a.follows.List(ctx)
	if err != nil {
		return err
	}
	for _, item := range items {
		if item.Key != key {
			continue
		}
		next, err := a.follows.RetryHydrate(ctx, item)
		if err != nil {
			return err
		}
		if next.Meta.Note != "" {
			fmt.Println("Still unavailable, try again later.")
		} else {
			printFollow(next)
		}
		return nil
	}
	return fmt.Errorf("not following %q", key)
}

func (a *app) cmdBrowse(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: dropbinge browse <media> <list> [-page N] [-refresh]")
	}
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	page := fs.Int("page", 1, "page number")
	refresh := fs.Bool("refresh", false, "drop cached pages for this media first")
	if err := parseArgsAfter(fs, args, 2); err != nil {
		return err
	}
	media, list := args[0], args[1]

	if *refresh {
		a.browser.Invalidate(media)
	}

	result, err := a.browser.Page(ctx, media, list, *page)
	if err != nil {
		return err
	}

	for _, item := range result.Items {
		date := ""
		if item.Date != nil {
			date = " (" + *item.Date + ")"
		}
		fmt.Printf("%8d  %s%s\n", item.ID, item.DisplayTitle(), date)
	}
	if result.TotalPages != nil {
		fmt.Printf("-- page %d of %d --\n", result.Page, *result.TotalPages)
	}
	return nil
}

func (a *app) cmdSearch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Println("Recent searches:")
		for _, item := range a.searcher.Recent() {
			fmt.Printf("%8d  %s\n", item.TMDBID, item.Title)
		}
		return nil
	}

	query := strings.Join(args, " ")
	results, err := a.searcher.Search(ctx, query)
	if err != nil {
		return err
	}
	for _, item := range results {
		date := ""
		if item.Date != nil {
			date = " (" + *item.Date + ")"
		}
		fmt.Printf("%8d  %-5s %s%s\n", item.ID, item.MediaType, item.DisplayTitle(), date)
	}
	return nil
}

func printFollow(item domain.FollowItem) {
	date := "TBD"
	if item.Meta.Date != nil {
		date = *item.Meta.Date
	}
	status := ""
	if item.IsCompleted {
		status = "  [complete]"
	}
	if item.Meta.Note != "" {
		status = "  [needs retry]"
	}
	fmt.Printf("%-26s %-10s %s%s\n", item.Key, date, item.Title, status)
}

// parseArgsAfter parses flags that follow n positional arguments.
func parseArgsAfter(fs *flag.FlagSet, args []string, n int) error {
	if len(args) <= n {
		return nil
	}
	return fs.Parse(args[n:])
}
