/*
Package main implements the usersuggest client widget and its dev server.

usersuggest completes user names as you type: keystrokes of at least three
characters are looked up on a user_suggest endpoint, answers are cached per
prefix for the rest of the session, and suggestions can be clicked to fill
the input.

# Usage

Serve names from a file on the default address:

	usersuggest serve --users users.txt

Open the terminal widget against it:

	usersuggest tui

Debug the lookup flow line by line, one prefix per line:

	usersuggest cli -d

Convert a text user list into the msgpack format:

	usersuggest index users.txt users.msgpack

# Configuration

Settings come from --config, else ~/.config/usersuggest/config.toml (created
with defaults on first run), else builtin defaults:

	[client]
	base_url = "http://127.0.0.1:8086/api/v1/"
	min_prefix = 3
	timeout = "5s"
	accept = "json"       # or "msgpack"
	result_path = ""      # gjson path when the array is wrapped

	[server]
	listen = "127.0.0.1:8086"
	users_file = ""
	limit = 10
	min_prefix = 3

	[cli]
	prompt = "> "

Command line flags override the file.
*/
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
)

const (
	Version = "0.3.0"
	AppName = "usersuggest"
)

// Globals are flags shared by every command.
type Globals struct {
	Config string `help:"Path to config.toml." type:"path"`
	Debug  bool   `short:"d" help:"Toggle debug mode."`
}

// CLI is the top-level command structure.
type CLI struct {
	Globals

	Serve   ServeCmd   `cmd:"" help:"Serve the user_suggest endpoint over HTTP."`
	TUI     TuiCmd     `cmd:"" name:"tui" default:"1" help:"Open the terminal suggestion widget."`
	Cli     CliCmd     `cmd:"" name:"cli" help:"Read prefixes line by line and print suggestions (debugging)."`
	Index   IndexCmd   `cmd:"" help:"Convert a text user list into msgpack."`
	Version VersionCmd `cmd:"" help:"Show current version."`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cli CLI
	parser := kong.Parse(&cli,
		kong.Name(AppName),
		kong.Description("Prefix-cached user name suggestions."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	if err := parser.Run(&cli.Globals); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		stop()
		os.Exit(1)
	}
}
