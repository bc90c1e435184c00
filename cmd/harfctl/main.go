package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"harf_sayi/internal/client"
)

const usage = `usage: harfctl [-api URL] [-session FILE] <command> [args]

commands:
  register <username> <password>
  login <username> <password>
  logout
  whoami
  save [-score N] [-hits N] [-misses N] [-false-alarms N] [-extra JSON] <test-name>
  results
  admin-results
  users`

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("harfctl failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("harfctl", flag.ContinueOnError)
	apiURL := fs.String("api", "", "API base URL (default $"+client.BaseURLEnv+" or "+client.DefaultBaseURL+")")
	sessionPath := fs.String("session", "", "session file (default <config dir>/harf/current_user.json)")
	fs.Usage = func() { fmt.Fprintln(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("missing command")
	}

	if *sessionPath == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return err
		}
		*sessionPath = p
	}
	c := client.New(client.ResolveBaseURL(*apiURL), client.NewSessionStore(*sessionPath))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "register", "login":
		if len(rest) != 2 {
			return fmt.Errorf("%s needs <username> <password>", cmd)
		}
		var (
			u   *client.CurrentUser
			err error
		)
		if cmd == "register" {
			u, err = c.Register(ctx, rest[0], rest[1])
		} else {
			u, err = c.Login(ctx, rest[0], rest[1])
		}
		if err != nil {
			return err
		}
		return printJSON(u)

	case "logout":
		return c.Logout()

	case "whoami":
		u := c.CurrentUser()
		if u == nil {
			fmt.Println("not logged in")
			return nil
		}
		return printJSON(u)

	case "save":
		name, payload, err := parseSave(rest)
		if err != nil {
			return err
		}
		resp, err := c.SaveTestResult(ctx, name, payload)
		if err != nil {
			return err
		}
		return printJSON(resp)

	case "results":
		results, err := c.MyResults(ctx)
		if err != nil {
			return err
		}
		return printJSON(results)

	case "admin-results":
		results, err := c.AdminResults(ctx)
		if err != nil {
			return err
		}
		return printJSON(results)

	case "users":
		users, err := c.Users(ctx)
		if err != nil {
			return err
		}
		return printJSON(users)

	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// parseSave builds the result payload for the save command.
func parseSave(args []string) (string, map[string]interface{}, error) {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	score := fs.String("score", "", "score (required)")
	hits := fs.String("hits", "", "hit count")
	misses := fs.String("misses", "", "miss count")
	falseAlarms := fs.String("false-alarms", "", "false alarm count")
	extra := fs.String("extra", "", "additional fields as a JSON object")
	if err := fs.Parse(args); err != nil {
		return "", nil, err
	}
	if fs.NArg() != 1 {
		return "", nil, errors.New("save needs exactly one <test-name>")
	}

	payload := map[string]interface{}{}
	if *extra != "" {
		if err := json.Unmarshal([]byte(*extra), &payload); err != nil {
			return "", nil, fmt.Errorf("-extra must be a JSON object: %w", err)
		}
	}
	if *score != "" {
		payload["score"] = *score
	}
	for key, raw := range map[string]string{"hits": *hits, "misses": *misses, "falseAlarms": *falseAlarms} {
		if raw == "" {
			continue
		}
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return "", nil, fmt.Errorf("-%s must be a number", key)
		}
		payload[key] = n
	}
	return fs.Arg(0), payload, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
