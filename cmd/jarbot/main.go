// Command jarbot is a line-oriented development harness for the ingestion
// core. It stands in for the bot transport: type a message to start a
// dialog, then reply with the number of a menu button. "/balance" prints the
// cached balance report, "/quit" exits.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/minhdn/jarbot/internal/catalog"
	"github.com/minhdn/jarbot/internal/config"
	"github.com/minhdn/jarbot/internal/dialog"
	"github.com/minhdn/jarbot/internal/domain"
	"github.com/minhdn/jarbot/internal/ledger"
	"github.com/minhdn/jarbot/internal/logger"
	"github.com/minhdn/jarbot/internal/matcher"
	"github.com/minhdn/jarbot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	rules := matcher.DefaultRules()
	if cfg.KeywordRulesPath != "" {
		if rules, err = matcher.LoadRules(cfg.KeywordRulesPath); err != nil {
			log.Fatal().Err(err).Msg("loading keyword rules")
		}
	}

	var fallback []domain.Category
	if cfg.FallbackCatalogPath != "" {
		if fallback, err = catalog.LoadFallback(cfg.FallbackCatalogPath); err != nil {
			log.Fatal().Err(err).Msg("loading fallback catalog")
		}
	}

	client := ledger.NewClient(cfg.LedgerEndpoint, cfg.CallTimeout, cfg.CacheTTL, logger.Component(log, "ledger"))
	sessions := session.NewStore(cfg.DraftMaxAge)
	provider := catalog.NewProvider(client, fallback, logger.Component(log, "catalog"))
	ctrl := dialog.NewController(matcher.New(rules), provider, sessions, client, logger.Component(log, "dialog"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DraftMaxAge > 0 {
		go sessions.RunSweeper(ctx, time.Minute, logger.Component(log, "session"))
	}

	id := ledger.Identity{
		User:     "local",
		LedgerID: os.Getenv("JARBOT_LEDGER_ID"),
		APIKey:   os.Getenv("JARBOT_API_KEY"),
	}

	if err := client.Ping(ctx, id); err != nil {
		log.Warn().Err(err).Msg("ledger unreachable, running on fallback catalog")
	}

	fmt.Println("jarbot — gõ giao dịch (vd: \"cà phê 35k\"), /balance, /quit")

	var last dialog.Prompt
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case line == "/balance":
			prompt, err := ctrl.BalanceSummary(ctx, id)
			if err != nil {
				fmt.Println("⚠️", err)
				continue
			}
			last = render(prompt)
		case isChoice(line, last):
			n, _ := strconv.Atoi(line)
			action, err := domain.ParseAction(last.Choices[n-1].Data)
			if err != nil {
				fmt.Println("⚠️", err)
				continue
			}
			last = render(ctrl.HandleAction(ctx, id, id.User, action))
		default:
			prompt, handled := ctrl.HandleMessage(ctx, id, domain.RawMessage{
				UserID:     id.User,
				Text:       line,
				ReceivedAt: time.Now(),
			})
			if !handled {
				fmt.Println(`(không phải giao dịch — cần kèm số tiền, vd: "cà phê 50k")`)
				continue
			}
			last = render(prompt)
		}
	}
}

// isChoice reports whether line picks one of the last prompt's buttons.
func isChoice(line string, last dialog.Prompt) bool {
	n, err := strconv.Atoi(line)
	return err == nil && n >= 1 && n <= len(last.Choices)
}

func render(p dialog.Prompt) dialog.Prompt {
	if p.IsZero() {
		return p
	}
	fmt.Println(p.Text)
	for i, c := range p.Choices {
		fmt.Printf("  %d. %s\n", i+1, c.Label)
	}
	return p
}
