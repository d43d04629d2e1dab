package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"
	"go.uber.org/zap"

	"Investaur/internal/notifier"
	"Investaur/internal/paper"
	"Investaur/internal/recorder"
	"Investaur/internal/scheduler"
	"Investaur/internal/server"
	"Investaur/internal/watchlist"
)

type serveCmd struct {
	scanOnStart bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "run the dashboard API, scheduler and Telegram bot" }
func (*serveCmd) Usage() string {
	return `investaur serve [-scan]

  Serves the HTTP API, runs the refresh jobs and, when configured, the
  Telegram bot. Ledgers live for the lifetime of the process.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.scanOnStart, "scan", false, "scan the watchlist once at startup")
}

func (c *serveCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	defer a.log.Sync()
	if err := c.run(ctx, a); err != nil {
		a.log.Error("serve", zap.Error(err))
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *serveCmd) run(ctx context.Context, a *app) error {
	log := a.log
	ledger, err := a.seededLedger()
	if err != nil {
		return err
	}
	acct := paper.NewAccount(a.provider, a.cfg.Paper.StartCash, paper.WithLogger(log.Named("paper")))

	var journal recorder.Recorder = recorder.NewNoopRecorder()
	if sr, err := recorder.NewSQLiteRecorder(a.cfg.Database.SQLitePath, log.Named("recorder")); err != nil {
		log.Warn("init sqlite recorder failed, using noop", zap.Error(err))
	} else {
		journal = sr
		defer sr.Close()
	}

	state := server.NewState(a.provider, ledger, acct, watchlist.New(a.cfg.Watchlist...), journal, log)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var n notifier.Notifier = notifier.Nop{}
	if a.cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.Provider.Proxy, log.Named("telegram"))
		n = tn
		router := state.BotRouter()
		go tn.StartPolling(ctx, router.Dispatch)
		log.Info("telegram polling started")
	}

	sched := scheduler.NewScheduler(ctx, state, n, log.Named("scheduler"))
	if err := sched.RegisterAll(a.cfg.Schedule.PortfolioCron, a.cfg.Schedule.PaperCron, a.cfg.Schedule.WatchlistCron); err != nil {
		return fmt.Errorf("register cron tasks: %w", err)
	}
	sched.Start()
	defer sched.Stop()
	if c.scanOnStart {
		go sched.ScanWatchlist()
	}

	srv := server.New(a.cfg.HTTP.Addr, state)
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info("shutdown signal received, stopping")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	return srv.Shutdown(shutdownCtx)
}
