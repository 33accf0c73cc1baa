// narrator speaks every keystroke, reads the window under the pointer on
// F1 and periodically announces that screen content changed.
//
// Usage:
//
//	narrator [--config path] [--engine auto|sapi|espeak|azure|none] [--host native|console] [--echo]
package main

import (
	"context"
	"fmt"
	"io"
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/hammamikhairi/narrator/internal/app"
	"github.com/hammamikhairi/narrator/internal/display"
	"github.com/hammamikhairi/narrator/internal/logger"
	"github.com/hammamikhairi/narrator/internal/platform"
	"github.com/hammamikhairi/narrator/internal/settings"
	"github.com/hammamikhairi/narrator/internal/speech"
)

// envConfig holds the environment overrides. Flags win over these.
type envConfig struct {
	ConfigPath   string `env:"NARRATOR_CONFIG"`
	LogFile      string `env:"NARRATOR_LOG_FILE"   envDefault:"narrator.log"`
	Engine       string `env:"NARRATOR_ENGINE"     envDefault:"auto"`
	Host         string `env:"NARRATOR_HOST"       envDefault:"native"`
	Voice        string `env:"NARRATOR_VOICE"`
	CacheDir     string `env:"NARRATOR_CACHE_DIR"`
	EspeakBinary string `env:"NARRATOR_ESPEAK"     envDefault:"espeak-ng"`
	AzureKey     string `env:"AZURE_SPEECH_KEY"`
	AzureRegion  string `env:"AZURE_SPEECH_REGION"`
}

type options struct {
	envConfig
	verbose bool
	quiet   bool
	echo    bool
}

func main() {
	_ = godotenv.Load()

	cfg, err := env.ParseAs[envConfig]()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error parsing environment: %v\n", err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg envConfig) *cobra.Command {
	opts := &options{envConfig: cfg}

	cmd := &cobra.Command{
		Use:           "narrator",
		Short:         "Speak keystrokes and window titles aloud",
		Args:          cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.ConfigPath, "config", opts.ConfigPath, "settings file (default ./config.json, then the user config dir)")
	f.StringVar(&opts.LogFile, "log-file", opts.LogFile, `file to append logs to (use "stderr" to log to console)`)
	f.BoolVar(&opts.verbose, "verbose", false, "enable verbose/debug logging")
	f.BoolVar(&opts.quiet, "quiet", false, "disable all logging")
	f.StringVar(&opts.Engine, "engine", opts.Engine, "speech engine: auto, sapi, espeak, azure or none")
	f.StringVar(&opts.Host, "host", opts.Host, "input host: native or console")
	f.StringVar(&opts.Voice, "voice", opts.Voice, "voice name for the speech engine")
	f.StringVar(&opts.CacheDir, "cache-dir", opts.CacheDir, "persist synthesized audio here (azure engine)")
	f.BoolVar(&opts.echo, "echo", false, "print every spoken phrase")
	return cmd
}

func run(ctx context.Context, opts *options) error {
	level := logger.LevelNormal
	if opts.verbose {
		level = logger.LevelVerbose
	}
	if opts.quiet {
		level = logger.LevelOff
	}

	var logOut io.Writer = os.Stderr
	if opts.LogFile != "" && opts.LogFile != "stderr" {
		logOut = logger.NewFileSink(opts.LogFile)
	}
	// Third-party libraries log through the standard logger.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(level, logOut)

	configPath, err := settings.Resolve(opts.ConfigPath)
	if err != nil {
		log.Warn("resolving settings path: %v", err)
		configPath = opts.ConfigPath
	}

	host, err := platform.Open(opts.Host, log)
	if err != nil {
		return &app.StartupError{Stage: app.StageHost, Err: err}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var echo func(string)
	if printer, ok := host.Hook.(interface{ Println(string) }); ok {
		// The console host owns the terminal; echo goes through it.
		if opts.echo {
			echo = func(text string) { printer.Println(display.FormatEcho(time.Now(), text)) }
		}
	} else {
		fmt.Println(display.RenderBanner())
		fmt.Println(display.HintStyle.Render("  Press F1 to read the window under the pointer, Ctrl+C to quit."))
		fmt.Println()
		if opts.echo {
			echo = display.Echo(os.Stdout)
		}
	}

	c := app.New(host, app.Options{
		ConfigPath: configPath,
		Engine: speech.EngineConfig{
			Kind:         speech.EngineKind(opts.Engine),
			Voice:        opts.Voice,
			EspeakBinary: opts.EspeakBinary,
			AzureKey:     opts.AzureKey,
			AzureRegion:  opts.AzureRegion,
			CacheDir:     opts.CacheDir,
		},
		Echo: echo,
	}, log)
	return c.Run(ctx)
}
