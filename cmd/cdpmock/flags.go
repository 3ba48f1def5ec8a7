package main

import (
	"fmt"
	"os"
	"time"

	"cdpmock/internal/config"

	"github.com/spf13/pflag"
)

type runFlags struct {
	configPath string
	devtools   string
	target     string
	rulesFile  string
	serverHost string
	journal    string
	logLevel   string
	grace      time.Duration
}

func parseRun(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	fs.SetInterspersed(true)
	var f runFlags

	fs.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	fs.StringVar(&f.devtools, "devtools", "", "DevTools HTTP endpoint (default http://127.0.0.1:9222)")
	fs.StringVar(&f.target, "target", "", "target ID to attach (default first page)")
	fs.StringVarP(&f.rulesFile, "rules", "r", "", "YAML rules file")
	fs.StringVar(&f.serverHost, "server-host", "", "host whose http traffic passes through (default 127.0.0.1)")
	fs.StringVar(&f.journal, "journal", "", "SQLite file recording every decision")
	fs.StringVar(&f.logLevel, "log-level", "", "trace, debug, info, warn or error")
	fs.DurationVar(&f.grace, "grace", -1, "wait after detaching for in-flight requests")

	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: cdpmock run [options]

Attach to a running Chrome and intercept its requests until interrupted.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := f.config()
	if err != nil {
		return err
	}
	return run(cfg)
}

// config 命令行参数覆盖配置文件
func (f *runFlags) config() (*config.Config, error) {
	cfg := config.NewConfig()
	if f.configPath != "" {
		var err error
		if cfg, err = config.Load(f.configPath); err != nil {
			return nil, err
		}
	}
	if f.devtools != "" {
		cfg.DevTools.URL = f.devtools
	}
	if f.target != "" {
		cfg.DevTools.Target = f.target
	}
	if f.rulesFile != "" {
		cfg.RulesFile = f.rulesFile
	}
	if f.serverHost != "" {
		cfg.Interception.ServerHost = f.serverHost
	}
	if f.journal != "" {
		cfg.Journal.DSN = f.journal
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.grace >= 0 {
		cfg.Interception.GraceMS = int(f.grace / time.Millisecond)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	return cfg, nil
}

func parseReport(args []string) error {
	fs := pflag.NewFlagSet("report", pflag.ContinueOnError)
	fs.SetInterspersed(true)
	var journal, session string

	fs.StringVar(&journal, "journal", "", "SQLite journal written by cdpmock run")
	fs.StringVar(&session, "session", "", "limit to one session ID")

	fs.Usage = func() {
		_, _ = fmt.Fprint(os.Stderr, `Usage: cdpmock report --journal <file> [options]

List requests that were blocked because no rule matched them.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if journal == "" {
		return fmt.Errorf("--journal is required")
	}
	return report(journal, session)
}
