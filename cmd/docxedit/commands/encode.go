package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"
	urfave "github.com/urfave/cli"

	"github.com/logicossoftware/go-docxedit"
	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging"
)

func NewEncodeCommand() cli.Command {
	cmd := &EncodeCommand{
		files:  files{fs: afero.NewOsFs(), stdin: os.Stdin, stdout: os.Stdout},
		Format: FormatJSON,
		Level:  flate.DefaultCompression,
	}

	return cli.Command{
		Handler: cmd,
		Config: cli.Config{
			Name:      "encode",
			Aliases:   []string{"e"},
			Usage:     "Build a DOCX package from a block representation",
			ArgsUsage: "[input]",
			Description: `
Reads blocks in the json, legacy or envelope format from the given file, or
from standard input when no file or "-" is given, and writes a new DOCX
package. Nothing is written when the blocks are malformed.`,
		},
	}
}

type EncodeCommand struct {
	files

	Output      string
	Format      string
	Title       string
	Creator     string
	BulletStyle string
	Level       int

	cfg    config.Global
	logger logging.Logger
}

func (c *EncodeCommand) Flags() []urfave.Flag {
	return []urfave.Flag{
		urfave.StringFlag{Name: "output, o", Usage: "Output file (standard output when empty or -)", Destination: &c.Output},
		urfave.StringFlag{Name: "format, f", Usage: "Input format (json, legacy, envelope)", Value: c.Format, Destination: &c.Format},
		urfave.StringFlag{Name: "title", Usage: "Document title recorded in the core properties", Destination: &c.Title},
		urfave.StringFlag{Name: "creator", Usage: "Document creator recorded in the core properties", Destination: &c.Creator},
		urfave.StringFlag{Name: "bullet-style", Usage: "Paragraph style id applied to bullets", Destination: &c.BulletStyle},
		urfave.IntFlag{Name: "level", Usage: "Deflate level of the package entries (-2..9)", Value: c.Level, Destination: &c.Level},
	}
}

func (c *EncodeCommand) Execute(ctx *cli.Context) error {
	c.init(ctx)

	if err := checkFormat(c.Format); err != nil {
		return err
	}

	input := ""
	if args := ctx.Args(); len(args) > 0 {
		input = args[0]
	}

	data, err := c.read(input)
	if err != nil {
		return err
	}

	doc, err := c.parse(data)
	if err != nil {
		return fmt.Errorf("couldn't read %s blocks: %w", c.Format, err)
	}

	var buf bytes.Buffer
	err = docxedit.Encode(&buf, doc,
		docxedit.WithWriteLimits(c.cfg.Limits.Docxedit()),
		docxedit.WithPackageCompression(c.Level),
		docxedit.WithBulletStyle(c.BulletStyle),
		docxedit.WithCoreProperties(c.Title, c.Creator),
	)
	if err != nil {
		return fmt.Errorf("couldn't encode document: %w", err)
	}

	err = c.write(c.Output, buf.Bytes())
	if err != nil {
		return err
	}

	c.logger.
		WithField("blocks", len(doc.Blocks)).
		WithField("bytes", buf.Len()).
		Info("Document encoded")

	return nil
}

func (c *EncodeCommand) init(ctx *cli.Context) {
	c.cfg = ctx.Config()
	c.logger = ctx.Logger().
		WithField("command", "encode")
}

func (c *EncodeCommand) parse(data []byte) (*docxedit.Document, error) {
	switch c.Format {
	case FormatLegacy:
		return docxedit.UnmarshalLegacy(data)
	case FormatEnvelope:
		return docxedit.DecodeEnvelope(bytes.NewReader(data), docxedit.WithEnvelopeLimits(c.cfg.Limits.Docxedit()))
	default:
		var doc docxedit.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return &doc, nil
	}
}
