package cli

import (
	"github.com/urfave/cli"
)

type Handler interface {
	Execute(context *Context) error
}

// FlagsProvider is implemented by handlers that accept command line flags.
// Flags usually bind to the handler's own fields through Destination.
type FlagsProvider interface {
	Flags() []cli.Flag
}

type Config = cli.Command

type Category struct {
	Config

	SubCategories []Category
	SubCommands   []Command
}

type Command struct {
	Config

	Handler Handler
}

func (cmd Command) toActionFunc(a *App) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		return cmd.Handler.Execute(a.makeContext(cliCtx))
	}
}

func (cmd Command) getFlags() []cli.Flag {
	provider, ok := cmd.Handler.(FlagsProvider)
	if !ok {
		return nil
	}

	return provider.Flags()
}
