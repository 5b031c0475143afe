package main

import (
	"context"
	"os"

	"github.com/spf13/afero"
	urfave "github.com/urfave/cli"

	"github.com/logicossoftware/go-docxedit/cmd/docxedit/commands"
	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging"
	"github.com/logicossoftware/go-docxedit/internal/logging/storage"
	"github.com/logicossoftware/go-docxedit/internal/signal"
)

const (
	appName           = "docxedit"
	defaultConfigFile = "docxedit.toml"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type globalFlags struct {
	Debug     bool
	LogLevel  string
	LogFile   string
	LogFormat string

	ConfigFile string
}

var (
	global = &globalFlags{
		ConfigFile: defaultConfigFile,
	}

	configFs = afero.NewOsFs()

	closeLogFile = cli.NewNopHook()
)

func (g *globalFlags) flags() []urfave.Flag {
	return []urfave.Flag{
		urfave.BoolFlag{Name: "debug", Usage: "Set debug log level", Destination: &g.Debug},
		urfave.StringFlag{Name: "log-level", Usage: "Set custom log level (debug, info, warning, error, fatal, panic)", EnvVar: "DOCXEDIT_LOG_LEVEL", Destination: &g.LogLevel},
		urfave.StringFlag{Name: "log-file", Usage: "File where logs should be saved", EnvVar: "DOCXEDIT_LOG_FILE", Destination: &g.LogFile},
		urfave.StringFlag{Name: "log-format", Usage: "Format of log (text, text-simple, json)", EnvVar: "DOCXEDIT_LOG_FORMAT", Destination: &g.LogFormat},
		urfave.StringFlag{Name: "config, c", Usage: "Path to a TOML or YAML configuration file", Value: g.ConfigFile, EnvVar: "DOCXEDIT_CONFIG", Destination: &g.ConfigFile},
	}
}

func main() {
	logger := logging.New()

	ctx := startSignalHandler(logger)

	a := setUpApplication(ctx, logger)

	err := a.Run(os.Args)
	if err != nil {
		logger.
			WithError(err).
			Error("Application execution failed")

		os.Exit(1)
	}
}

func startSignalHandler(logger logging.Logger) context.Context {
	terminationHandler := signal.NewTerminationHandler(logger)
	go terminationHandler.HandleSignals()

	return terminationHandler.Context()
}

func setUpApplication(ctx context.Context, logger logging.Logger) *cli.App {
	a := cli.New(ctx, appName, "Convert DOCX documents to editable blocks and back", Version)

	a.AddBeforeFunc(func(ctx *cli.Context) error {
		ctx.SetLogger(logger)

		return nil
	})
	a.AddBeforeFunc(loadConfigurationFile)
	a.AddBeforeFunc(updateLogLevel)
	a.AddBeforeFunc(updateLogFormat)
	a.AddBeforeFunc(setLoggingToFile)
	a.AddBeforeFunc(logStartupMessage)

	// If logging to file will be set, closeLogFile() will close the
	// used file. Otherwise it's a NOP call.
	a.AddAfterFunc(func(ctx *cli.Context) error {
		return closeLogFile(ctx)
	})

	a.AddGlobalFlags(global.flags()...)

	a.RegisterCommand(commands.NewDecodeCommand())
	a.RegisterCommand(commands.NewEncodeCommand())
	a.RegisterCommand(commands.NewServeCommand())

	return a
}

func logStartupMessage(ctx *cli.Context) error {
	ctx.
		Logger().
		WithFields(logging.Fields{
			"version": Version,
		}).
		Debugf("Starting %s", appName)

	return nil
}

// loadConfigurationFile reads the configuration file. A missing file is only
// an error when it was named explicitly.
func loadConfigurationFile(ctx *cli.Context) error {
	exists, err := afero.Exists(configFs, global.ConfigFile)
	if err != nil {
		return err
	}

	if !exists && global.ConfigFile == defaultConfigFile {
		ctx.SetConfig(config.Default())

		return nil
	}

	cfg, err := config.LoadFromFile(configFs, global.ConfigFile)
	if err != nil {
		return err
	}

	ctx.SetConfig(cfg)

	return nil
}

func updateLogLevel(ctx *cli.Context) error {
	logLevel := ctx.Config().LogLevel
	if global.Debug {
		logLevel = "debug"
	} else if global.LogLevel != "" {
		logLevel = global.LogLevel
	}

	if logLevel == "" {
		return nil
	}

	return ctx.Logger().SetLevel(logLevel)
}

func updateLogFormat(ctx *cli.Context) error {
	logFormat := ctx.Config().LogFormat
	if global.LogFormat != "" {
		logFormat = global.LogFormat
	}

	if logFormat == "" {
		return nil
	}

	return ctx.Logger().SetFormat(logFormat)
}

func setLoggingToFile(ctx *cli.Context) error {
	logFile := ctx.Config().LogFile
	if global.LogFile != "" {
		logFile = global.LogFile
	}

	if logFile == "" {
		return nil
	}

	logStorage := storage.NewFile(logFile)
	err := logStorage.Open()
	if err != nil {
		return err
	}

	closeLogFile = func(ctx *cli.Context) error {
		return logStorage.Close()
	}

	ctx.Logger().SetOutput(logStorage)

	return nil
}
