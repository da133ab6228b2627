package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"nickandperla.net/nock/pkg/nock"
)

func newNockCmd() *cobra.Command {
	var (
		evalStr     string
		file        string
		configPath  string
		logToStderr bool
		verbose     int
		flagCfg     = defaultConfig()
	)

	cmd := &cobra.Command{
		Use:   "nock",
		Short: "Evaluate Nock 4K nouns",
		Long: "Evaluate Nock 4K nouns.\n" +
			"\n" +
			"With -e the noun [subject formula] is evaluated and printed. With -f a file of\n" +
			"\"name = noun\" definitions is loaded first. Piped input is read as a script of\n" +
			"nouns and REPL commands; otherwise an interactive REPL starts.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initLogging(logToStderr, verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			glog.Flush()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			explicit := configPath != ""
			if !explicit {
				configPath = defaultConfigPath()
			}
			cfg, err := loadConfig(configPath, explicit)
			if err != nil {
				return err
			}
			overrideConfig(cmd, &cfg, flagCfg)

			opts, err := cfg.options()
			if err != nil {
				return err
			}
			rt, err := nock.New(opts...)
			if err != nil {
				return err
			}
			defer rt.Close()

			return run(cmd, rt, cfg, file, evalStr)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&evalStr, "eval", "e", "", "Evaluate a [subject formula] noun")
	flags.StringVarP(&file, "file", "f", "", "Load a definitions file")
	flags.StringVar(&configPath, "config", "", "Config file (default $HOME/"+defaultConfigFile+")")
	flags.StringVar(&flagCfg.DB, "db", flagCfg.DB, "SQLite database path (empty for memory only)")
	flags.IntVar(&flagCfg.MaxDepth, "max-depth", flagCfg.MaxDepth, "Maximum non-tail nesting depth")
	flags.Int64Var(&flagCfg.MaxSteps, "max-steps", 0, "Maximum reduction steps per evaluation (0 for unlimited)")
	flags.DurationVar((*time.Duration)(&flagCfg.Timeout), "timeout", 0, "Maximum time per evaluation (0 for none)")
	flags.BoolVar(&flagCfg.NoStdlib, "no-stdlib", false, "Disable the standard prelude")
	flags.StringVar(&flagCfg.PersistMode, "persist-mode", flagCfg.PersistMode, "Persistence mode: on_demand, always, or never")
	flags.StringVar(&flagCfg.HistoryFile, "history-file", flagCfg.HistoryFile, "REPL history file")

	cmd.PersistentFlags().BoolVar(&logToStderr, "logtostderr", false, "Log to stderr instead of to files")
	cmd.PersistentFlags().IntVarP(
		&verbose, "verbose", "v", 0, "Enable verbose logging (e.g., v=3); anything >5 is very verbose")

	cmd.AddCommand(newCheckCmd())

	return cmd
}

// overrideConfig copies every flag the user set over the file config.
func overrideConfig(cmd *cobra.Command, cfg *Config, flagCfg Config) {
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = flagCfg.DB
	}
	if flags.Changed("max-depth") {
		cfg.MaxDepth = flagCfg.MaxDepth
	}
	if flags.Changed("max-steps") {
		cfg.MaxSteps = flagCfg.MaxSteps
	}
	if flags.Changed("timeout") {
		cfg.Timeout = flagCfg.Timeout
	}
	if flags.Changed("no-stdlib") {
		cfg.NoStdlib = flagCfg.NoStdlib
	}
	if flags.Changed("persist-mode") {
		cfg.PersistMode = flagCfg.PersistMode
	}
	if flags.Changed("history-file") {
		cfg.HistoryFile = flagCfg.HistoryFile
	}
}

func run(cmd *cobra.Command, rt *nock.Runtime, cfg Config, file, evalStr string) error {
	out := cmd.OutOrStdout()

	// Step 1: Load file if specified (definitions only)
	if file != "" {
		if err := rt.LoadFile(file); err != nil {
			return err
		}
	}

	// Step 2: Run -e expression if provided
	if evalStr != "" {
		result, err := rt.Eval(evalStr)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, result)
	}

	if file != "" || evalStr != "" {
		return nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return runREPL(rt, cfg.HistoryFile, out)
	}
	return runScript(rt, in, out)
}

// runScript evaluates piped input, stopping at the first error.
func runScript(rt *nock.Runtime, in io.Reader, out io.Writer) error {
	s := &session{rt: rt, out: out}
	lines := newLineSource(in)
	for {
		src, err := readInput(lines.next, "", "")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		quit, err := s.handle(src)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}
