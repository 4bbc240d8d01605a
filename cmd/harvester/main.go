// Command harvester crawls investing.com currency-pair news and emits the
// harvested records as a JSON array, optionally persisting them to a local
// store and fanning them out to configured publishers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fxwire-hq/fxwire-news-harvester/internal/config"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/crawler"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/domain"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/logger"
	"github.com/fxwire-hq/fxwire-news-harvester/internal/store"
	"github.com/fxwire-hq/fxwire-news-harvester/pkg/browser"
	"github.com/fxwire-hq/fxwire-news-harvester/pkg/httpclient"
	"github.com/fxwire-hq/fxwire-news-harvester/pkg/publishers"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config file (default ./config.yaml if present)")
		symbol     = flag.String("symbol", "", "currency-pair symbol, e.g. eur-usd (overrides config)")
		pages      = flag.Int("pages", 0, "number of listing pages to crawl (overrides config)")
		output     = flag.String("output", "", "write the JSON output to this file instead of stdout")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("load config", err)
	}
	if *symbol != "" {
		cfg.Symbol = *symbol
	}
	if *pages > 0 {
		cfg.Pages = *pages
	}
	if *output != "" {
		cfg.Output = *output
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fatal("build logger", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := buildFetcher(cfg, log)
	records, err := crawler.New(fetcher, log).Crawl(ctx, cfg.Symbol, cfg.Pages)
	if err != nil {
		fatal("crawl", err)
	}

	log.InfoObj("crawl finished", "crawl_done", map[string]any{
		"symbol":  cfg.Symbol,
		"pages":   cfg.Pages,
		"records": len(records),
	})

	if cfg.Store.Path != "" {
		st, err := store.Open(cfg.Store.Path, log)
		if err != nil {
			fatal("open store", err)
		}
		if err := st.SaveAll(records); err != nil {
			_ = st.Close()
			fatal("persist records", err)
		}
		if err := st.Close(); err != nil {
			fatal("close store", err)
		}
	}

	if cfg.Publishers.File != "" {
		publish(ctx, cfg.Publishers.File, records, log)
	}

	if err := emit(records, cfg.Output); err != nil {
		fatal("write output", err)
	}
}

// buildFetcher picks the configured page-fetching engine.
func buildFetcher(cfg *config.Config, log logger.Logger) crawler.PageFetcher {
	if cfg.Fetch.Engine == config.EngineHTTP {
		client := httpclient.NewRestyClient(time.Duration(cfg.Fetch.HTTPTimeoutSeconds) * time.Second)
		return httpclient.NewPageClient(client, cfg.Fetch.UserAgent)
	}

	bcfg := browser.DefaultConfig()
	bcfg.Headless = cfg.Browser.Headless
	bcfg.NoSandbox = cfg.Browser.NoSandbox
	bcfg.BrowserBin = cfg.Browser.Bin
	bcfg.NavTimeout = time.Duration(cfg.Browser.NavTimeoutSeconds) * time.Second
	if cfg.Fetch.UserAgent != "" {
		bcfg.UserAgent = cfg.Fetch.UserAgent
	}
	return browser.NewSession(bcfg, log)
}

// publish fans the records out to every enabled publisher. Delivery
// failures are logged per record and do not abort the remaining sends.
func publish(ctx context.Context, file string, records []domain.NewsRecord, log logger.Logger) {
	cfgs, err := publishers.LoadConfigs(file)
	if err != nil {
		fatal("load publishers", err)
	}
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), cfgs, log)
	if err != nil {
		fatal("build publishers", err)
	}

	for _, pub := range pubs {
		for _, rec := range records {
			if err := pub.Publish(ctx, rec); err != nil {
				log.WarnObj("record publish failed", "publish_error", map[string]any{
					"publisher_id": pub.ID(),
					"url":          rec.URL,
					"error":        err.Error(),
				})
			}
		}
	}
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "harvester: %s: %v\n", msg, err)
	os.Exit(1)
}

// emit writes the records as an indented JSON array to the output file or
// stdout.
func emit(records any, output string) error {
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal records: %w", err)
	}
	payload = append(payload, '\n')

	if output == "" {
		_, err = os.Stdout.Write(payload)
		return err
	}
	if err := os.WriteFile(output, payload, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}
	return nil
}
