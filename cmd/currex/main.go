package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"github.com/sejin-coding/currex-go/internal/app"
	"github.com/sejin-coding/currex-go/internal/config"
	"github.com/sejin-coding/currex-go/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		fmt.Fprintf(os.Stderr, "currex: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("currex", cfg.LogLevel)

	application, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Warn("shutdown", slog.String("error", err.Error()))
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	parser := flags.NewParser(nil, flags.Default)
	addCommands(parser, ctx, application)

	_, err = parser.Parse()
	return err
}

func addCommands(parser *flags.Parser, ctx context.Context, a *app.App) {
	must := func(_ *flags.Command, err error) {
		if err != nil {
			panic(err)
		}
	}

	must(parser.AddCommand("login",
		"Sign in with Kakao",
		"Opens the backend login URL and waits for the redirect that delivers the access token.",
		&loginCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("logout",
		"Sign out",
		"Invalidates the session on the backend and removes the saved snapshot.",
		&logoutCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("whoami",
		"Show the signed-in user",
		"Fetches the profile of the currently signed-in user.",
		&whoamiCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("sells",
		"List sell listings",
		"Lists open currency sell listings, or your own with --mine.",
		&sellsCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("sell",
		"Show one listing",
		"Shows the full description of a sell listing.",
		&sellCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("post",
		"Post a sell listing",
		"Registers a new currency sell listing, quoting its KRW value from the live rate.",
		&postCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("status",
		"Change a listing's trade status",
		"Advances a listing you own through listed, negotiating, completed.",
		&statusCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("match",
		"Find nearby sellers",
		"Registers a buy request and lists matching sellers sorted by distance.",
		&matchCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("chat",
		"Chat in a trade room",
		"Joins a chat room, prints the transcript, and relays typed lines as messages.",
		&chatCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("rate",
		"Quote an exchange rate",
		"Shows the current KRW rate for a currency, or converts an amount.",
		&rateCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("recognize",
		"Recognize a banknote photo",
		"Sends a banknote photo to the recognition service and prints the currency.",
		&recognizeCommand{ctx: ctx, app: a}))
	must(parser.AddCommand("donations",
		"Show the donation ranking",
		"Lists the top donors and the running donation total.",
		&donationsCommand{ctx: ctx, app: a}))
}
