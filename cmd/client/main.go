package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/AlexVocao/login/internal/client"
)

const usage = `usage: client [flags] <command>

commands:
  signup   register a new account
  login    sign in and store the session token
  logout   discard the stored session token
  me       show the signed-in profile
  forgot   request a password reset email
  reset    set a new password with a reset token
`

// App runs one CLI command against the API.
type App struct {
	api    *client.Client
	reader *bufio.Reader
	out    io.Writer
}

func main() {
	home, _ := os.UserHomeDir()
	server := flag.String("server", envOr("LOGIN_API_URL", "http://localhost:8080"), "API base URL")
	sessionPath := flag.String("session", filepath.Join(home, ".login-session.db"), "path of the local session database")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	session, err := client.OpenSessionStore(ctx, *sessionPath, logger)
	if err != nil {
		logger.Error("open session store", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	app := &App{
		api:    client.New(*server, session),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}
	if err := app.Run(ctx, flag.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		session.Close()
		os.Exit(1)
	}
}

// Run executes the named command.
func (a *App) Run(ctx context.Context, cmd string) error {
	switch cmd {
	case "signup":
		return a.signup(ctx)
	case "login":
		return a.login(ctx)
	case "logout":
		if err := a.api.Logout(ctx); err != nil {
			return err
		}
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "me":
		return a.me(ctx)
	case "forgot":
		return a.forgot(ctx)
	case "reset":
		return a.reset(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) signup(ctx context.Context) error {
	var req client.SignupRequest
	var err error
	if req.Username, err = getSimpleText(a.reader, "Username", a.out); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if req.Password, err = getPassword("Password", a.out); err != nil {
		return err
	}
	if req.Address, err = getOptional(a.reader, "Address (optional)", a.out); err != nil {
		return err
	}
	if req.Gender, err = getOptional(a.reader, "Gender (optional)", a.out); err != nil {
		return err
	}

	user, msg, err := a.api.Signup(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s (id %d)\n", msg, user.Username, user.ID)
	return nil
}

func (a *App) login(ctx context.Context) error {
	identifier, err := getSimpleText(a.reader, "Username or email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword("Password", a.out)
	if err != nil {
		return err
	}

	user, err := a.api.Login(ctx, identifier, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s <%s>\n", user.Username, user.Email)
	return nil
}

func (a *App) me(ctx context.Context) error {
	profile, err := a.api.Profile(ctx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return errors.New("not logged in, run: client login")
		}
		return err
	}
	fmt.Fprintf(a.out, "id:       %d\nusername: %s\nemail:    %s\n", profile.ID, profile.Username, profile.Email)
	if profile.Address != nil {
		fmt.Fprintf(a.out, "address:  %s\n", *profile.Address)
	}
	if profile.Gender != nil {
		fmt.Fprintf(a.out, "gender:   %s\n", *profile.Gender)
	}
	fmt.Fprintf(a.out, "joined:   %s\n", profile.CreatedAt.Format("2006-01-02"))
	return nil
}

func (a *App) forgot(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	msg, err := a.api.ForgotPassword(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func (a *App) reset(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Reset token", a.out)
	if err != nil {
		return err
	}
	newPassword, err := getPassword("New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword("Confirm new password", a.out)
	if err != nil {
		return err
	}
	msg, err := a.api.ResetPassword(ctx, token, newPassword, confirm)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
