package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tradefront/ctpgate/internal/bdata"
	"github.com/tradefront/ctpgate/internal/config"
	"github.com/tradefront/ctpgate/internal/ctp"
	"github.com/tradefront/ctpgate/internal/events"
	"github.com/tradefront/ctpgate/internal/trader"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logFormat := "json"
	if cfg.App.Environment == "development" {
		logFormat = "console"
	}
	config.InitLogger(cfg.App.LogLevel, logFormat)

	log.Info().
		Str("version", cfg.App.Version).
		Str("mode", cfg.Session.Mode).
		Msg("starting ctpgate")

	bd, err := bdata.Load(cfg.BData.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.BData.Path).Msg("failed to load reference data")
	}

	var inner trader.Sink
	var natsSink *events.NATSSink
	if cfg.NATS.Enabled {
		natsSink, err = events.NewNATSSink(events.NATSConfig{
			URL:    cfg.NATS.URL,
			Prefix: cfg.NATS.Prefix,
			User:   cfg.Session.User,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect event sink")
		}
		defer natsSink.Close()
		inner = natsSink
	} else {
		inner = events.NewLogSink()
	}

	// The live vendor driver is linked in a cgo build; the default build runs
	// the paper driver.
	var driver ctp.Driver
	switch cfg.Session.Mode {
	case "paper":
		driver = ctp.NewSimDriver(time.Now().Format("20060102"))
	default:
		log.Fatal().Str("mode", cfg.Session.Mode).Msg("no driver available for session mode in this build")
	}

	ctl := &controlSink{Sink: inner, snapshot: cfg.Query.SnapshotOnReady}

	tr, err := trader.New(trader.Config{
		Broker:   cfg.Session.Broker,
		User:     cfg.Session.User,
		Password: cfg.Session.Password,
		AppID:    cfg.Session.AppID,
		AuthCode: cfg.Session.AuthCode,
		Front:    cfg.Session.Front,
		FlowDir:  cfg.Session.FlowDir,
		DataDir:  cfg.Session.DataDir,
		Quick:    cfg.Session.Quick,
	}, driver, ctl, bd)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to assemble trader")
	}
	ctl.trader = tr

	if err := tr.Connect(); err != nil {
		log.Fatal().Err(err).Msg("failed to connect")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	if err := tr.Close(); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}

// controlSink drives the session from its own callbacks: login on connect,
// snapshot queries on ready. Everything else passes straight through.
type controlSink struct {
	trader.Sink
	trader   *trader.Trader
	snapshot bool
}

func (c *controlSink) OnConnected() {
	c.Sink.OnConnected()
	if err := c.trader.Login(); err != nil {
		log.Error().Err(err).Msg("login request failed")
	}
}

func (c *controlSink) OnLoginResult(success bool, msg string, tradingDay uint32) {
	c.Sink.OnLoginResult(success, msg, tradingDay)
	if !success || !c.snapshot {
		return
	}
	for name, q := range map[string]func() error{
		"account":   c.trader.QueryAccount,
		"positions": c.trader.QueryPositions,
		"orders":    c.trader.QueryOrders,
		"trades":    c.trader.QueryTrades,
	} {
		if err := q(); err != nil {
			log.Error().Err(err).Str("query", name).Msg("snapshot query failed")
		}
	}
}
