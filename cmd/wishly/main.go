package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/wishly-app/wishly/internal/api"
	"github.com/wishly-app/wishly/internal/app"
	"github.com/wishly-app/wishly/internal/config"
	"github.com/wishly-app/wishly/internal/session"
)

func main() {
	os.Exit(run())
}

func run() int {
	// A local .env can hold WISHLY_API_URL during development.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "override config path (optional)")
	sessionPath := flag.String("session", "", "override session file path (optional)")
	pollSeconds := flag.Int("poll", 0, "stats poll interval in seconds (optional)")
	flag.Usage = usage
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	var err error
	switch args[0] {
	case "login":
		err = runLogin(ctx, *configPath, *sessionPath, false)
	case "register":
		err = runLogin(ctx, *configPath, *sessionPath, true)
	case "logout":
		err = session.Clear(*sessionPath)
		if err == nil {
			fmt.Println("signed out")
		}
	case "stats":
		err = runStats(ctx, *configPath)
	case "lists":
		err = runLists(ctx, *configPath, *sessionPath)
	case "help":
		usage()
	default:
		// Anything else is a wishlist slug to watch.
		err = app.Run(ctx, app.Options{
			ConfigPath:  *configPath,
			SessionPath: *sessionPath,
			Slug:        args[0],
			PollEvery:   *pollSeconds,
		})
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "wishly: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: wishly [flags] <command>

commands:
  <slug>     watch the wishlist with this public slug
  login      sign in and save the session
  register   create an account and sign in
  logout     remove the saved session
  lists      print your own wishlists
  stats      print the aggregate totals

flags:
  -config PATH    override config path
  -session PATH   override session file path
  -poll SECONDS   override the stats poll interval`)
}

func newClient(configPath, sessionPath string) (*api.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	sess := session.Load(sessionPath)
	return api.NewClient(cfg.APIURL, sess.Token)
}

// runLogin handles both login and register: prompt for credentials, call
// the auth endpoint and persist the resulting session.
func runLogin(ctx context.Context, configPath, sessionPath string, register bool) error {
	client, err := newClient(configPath, sessionPath)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	email, err := prompt(reader, "email: ")
	if err != nil {
		return err
	}
	password, err := prompt(reader, "password: ")
	if err != nil {
		return err
	}

	var auth *api.AuthResponse
	if register {
		name, err := prompt(reader, "name: ")
		if err != nil {
			return err
		}
		auth, err = client.Register(ctx, email, password, name)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
	} else {
		auth, err = client.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
	}

	if err := session.Save(sessionPath, session.FromAuth(*auth)); err != nil {
		return err
	}
	fmt.Printf("signed in as %s\n", auth.User.Name)
	return nil
}

func prompt(reader *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func runStats(ctx context.Context, configPath string) error {
	client, err := newClient(configPath, "")
	if err != nil {
		return err
	}
	stats, err := client.Stats(ctx)
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	fmt.Printf("collected %.2f of %.2f\n", stats.TotalCollected, stats.TotalGoal)
	for _, c := range stats.RecentContributors {
		fmt.Printf("  %s\n", c.Name)
	}
	return nil
}

func runLists(ctx context.Context, configPath, sessionPath string) error {
	sess := session.Load(sessionPath)
	if !sess.Authenticated() {
		return fmt.Errorf("not signed in, run: wishly login")
	}
	client, err := newClient(configPath, sessionPath)
	if err != nil {
		return err
	}
	lists, err := client.Wishlists(ctx)
	if err != nil {
		return fmt.Errorf("load wishlists: %w", err)
	}
	if len(lists) == 0 {
		fmt.Println("no wishlists yet")
		return nil
	}
	for _, wl := range lists {
		fmt.Printf("%-20s %s\n", wl.Slug, wl.Title)
	}
	return nil
}
