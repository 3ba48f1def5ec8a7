package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"cdpmock/internal/cdp"
	"cdpmock/internal/config"
	"cdpmock/internal/logger"
	"cdpmock/internal/session"
	"cdpmock/internal/storage"
	"cdpmock/pkg/model"
	"cdpmock/pkg/rulespec"

	"github.com/jedib0t/go-pretty/v6/table"
)

func run(cfg *config.Config) error {
	log := logger.New(logger.Options{Level: cfg.Log.Level, Writer: cfg.Log.Writer, File: cfg.Log.File})

	var defaults []rulespec.Rule
	var allow []rulespec.AllowEntry
	if cfg.RulesFile != "" {
		rc, err := rulespec.LoadConfig(cfg.RulesFile)
		if err != nil {
			return err
		}
		if defaults, allow, err = rc.Build(); err != nil {
			return fmt.Errorf("%s: %w", cfg.RulesFile, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	adapter, err := cdp.Attach(ctx, cdp.Options{
		DevToolsURL:    cfg.DevTools.URL,
		Target:         cfg.DevTools.Target,
		Workers:        cfg.Interception.Workers,
		ProcessTimeout: cfg.ProcessTimeout(),
		AttachAttempts: cfg.DevTools.AttachAttempts,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	defer adapter.Close()

	opts := []session.Option{
		session.WithDefaults(defaults...),
		session.WithAllow(allow...),
		session.WithServerHost(cfg.Interception.ServerHost),
		session.WithGrace(cfg.Grace()),
		session.WithLogger(log),
	}

	journalDone := make(chan struct{})
	if cfg.Journal.DSN != "" {
		j, err := storage.Open(cfg.Journal.DSN, log)
		if err != nil {
			return err
		}
		defer j.Close()
		events := make(chan model.Event, 256)
		opts = append(opts, session.WithEvents(events))
		jctx, cancel := context.WithCancel(context.Background())
		defer func() {
			cancel()
			<-journalDone
		}()
		go func() {
			defer close(journalDone)
			j.Consume(jctx, events)
		}()
	} else {
		close(journalDone)
	}

	s := session.New(adapter, opts...)
	lease, err := s.Start(ctx)
	if err != nil {
		return err
	}
	log.Info("拦截已启动，Ctrl+C 退出", "rules", len(defaults), "allow", len(allow))

	<-ctx.Done()
	if err := lease.Release(context.Background()); err != nil {
		return err
	}
	printStats(s.Stats())
	return nil
}

func printStats(st model.EngineStats) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Total", "Mocked", "Allowed", "Blocked"})
	t.AppendRow(table.Row{st.Total, st.Matched, st.Allowed, st.Blocked})
	t.Render()
}

func report(dsn, sessionID string) error {
	j, err := storage.Open(dsn, logger.NewNop())
	if err != nil {
		return err
	}
	defer j.Close()

	records, err := j.Blocked(context.Background(), model.SessionID(sessionID))
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No blocked requests recorded.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Time", "Session", "Method", "URL"})
	for _, r := range records {
		t.AppendRow(table.Row{r.CreatedAt.Format("15:04:05.000"), r.Session, r.Method, r.URL})
	}
	t.Render()
	fmt.Printf("%d blocked request(s)\n", len(records))
	return nil
}
