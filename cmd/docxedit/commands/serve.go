package commands

import (
	"fmt"

	"github.com/spf13/afero"
	urfave "github.com/urfave/cli"

	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/server"
	"github.com/logicossoftware/go-docxedit/internal/storage"
)

func NewServeCommand() cli.Command {
	cmd := &ServeCommand{fs: afero.NewOsFs()}

	return cli.Command{
		Handler: cmd,
		Config: cli.Config{
			Name:    "serve",
			Aliases: []string{"s"},
			Usage:   "Serve the upload and download endpoints over HTTP",
			Description: `
POST /upload accepts a multipart form with a "file" part holding a DOCX
package and answers with its blocks in the legacy format.

POST /download accepts {"content": [...]} with blocks in the legacy format
and answers with the generated DOCX package as an attachment.

The server stops gracefully on SIGINT or SIGTERM.`,
		},
	}
}

type ServeCommand struct {
	fs afero.Fs

	Listen     string
	ScratchDir string
}

func (c *ServeCommand) Flags() []urfave.Flag {
	return []urfave.Flag{
		urfave.StringFlag{Name: "listen, l", Usage: "Address to listen on; overrides the configured one", Destination: &c.Listen},
		urfave.StringFlag{Name: "scratch-dir", Usage: "Directory for uploads in flight; overrides the configured one", Destination: &c.ScratchDir},
	}
}

func (c *ServeCommand) Execute(ctx *cli.Context) error {
	cfg := ctx.Config()
	if c.Listen != "" {
		cfg.Server.Listen = c.Listen
	}
	if c.ScratchDir != "" {
		cfg.Server.ScratchDir = c.ScratchDir
	}

	logger := ctx.Logger().
		WithField("command", "serve")

	store, err := storage.New(c.fs, cfg.Server.ScratchDir)
	if err != nil {
		return err
	}

	logger.
		WithField("scratch_dir", store.Dir()).
		WithField("max_upload_size", cfg.Server.MaxUploadSize).
		Debug("Scratch storage ready")

	srv := server.New(cfg.Server, cfg.Limits.Docxedit(), store, logger)

	err = srv.ListenAndServe(ctx.Ctx)
	if err != nil {
		return fmt.Errorf("couldn't serve: %w", err)
	}

	return nil
}
