package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
	urfave "github.com/urfave/cli"

	"github.com/logicossoftware/go-docxedit"
	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging"
)

func NewDecodeCommand() cli.Command {
	cmd := &DecodeCommand{
		files:  files{fs: afero.NewOsFs(), stdin: os.Stdin, stdout: os.Stdout},
		Format: FormatJSON,
	}

	return cli.Command{
		Handler: cmd,
		Config: cli.Config{
			Name:      "decode",
			Aliases:   []string{"d"},
			Usage:     "Convert a DOCX package into its block representation",
			ArgsUsage: "[input.docx]",
			Description: `
Reads a DOCX package from the given file, or from standard input when no file
or "-" is given, and writes the paragraphs and tables of its body.

The json format writes one record per run and per cell. The legacy format
writes the parallel array contract understood by the editor front end. The
envelope format frames the json form in a binary header and compresses it.`,
		},
	}
}

type DecodeCommand struct {
	files

	Output      string
	Format      string
	Compression string
	Lenient     bool
	Indent      bool

	cfg    config.Global
	logger logging.Logger
}

func (c *DecodeCommand) Flags() []urfave.Flag {
	return []urfave.Flag{
		urfave.StringFlag{Name: "output, o", Usage: "Output file (standard output when empty or -)", Destination: &c.Output},
		urfave.StringFlag{Name: "format, f", Usage: "Output format (json, legacy, envelope)", Value: c.Format, Destination: &c.Format},
		urfave.StringFlag{Name: "compression", Usage: "Envelope compression (none, zip, zstd, lz4, br); defaults to the configured one", Destination: &c.Compression},
		urfave.BoolFlag{Name: "lenient", Usage: "Read table cells without a text node as empty", Destination: &c.Lenient},
		urfave.BoolFlag{Name: "indent", Usage: "Indent JSON output", Destination: &c.Indent},
	}
}

func (c *DecodeCommand) Execute(ctx *cli.Context) error {
	c.init(ctx)

	if err := checkFormat(c.Format); err != nil {
		return err
	}

	input := ""
	if args := ctx.Args(); len(args) > 0 {
		input = args[0]
	}

	c.logger.
		WithField("input", input).
		WithField("format", c.Format).
		Debug("Decoding document")

	data, err := c.read(input)
	if err != nil {
		return err
	}

	doc, err := docxedit.Decode(
		bytes.NewReader(data),
		docxedit.WithReadLimits(c.cfg.Limits.Docxedit()),
		docxedit.WithLenientCells(c.Lenient),
	)
	if err != nil {
		return fmt.Errorf("couldn't decode document: %w", err)
	}

	out, err := c.render(doc)
	if err != nil {
		return err
	}

	err = c.write(c.Output, out)
	if err != nil {
		return err
	}

	c.logger.
		WithField("blocks", len(doc.Blocks)).
		WithField("bytes", len(out)).
		Info("Document decoded")

	return nil
}

func (c *DecodeCommand) init(ctx *cli.Context) {
	c.cfg = ctx.Config()
	c.logger = ctx.Logger().
		WithField("command", "decode")
}

func (c *DecodeCommand) render(doc *docxedit.Document) ([]byte, error) {
	switch c.Format {
	case FormatLegacy:
		out, err := docxedit.MarshalLegacy(doc)
		if err != nil {
			return nil, err
		}
		return c.indent(out)
	case FormatEnvelope:
		comp, err := envelopeCompression(c.Compression, c.cfg)
		if err != nil {
			return nil, err
		}

		var buf bytes.Buffer
		err = docxedit.EncodeEnvelope(&buf, doc,
			docxedit.WithEnvelopeCompression(comp),
			docxedit.WithEnvelopeLimits(c.cfg.Limits.Docxedit()),
		)
		if err != nil {
			return nil, fmt.Errorf("couldn't build envelope: %w", err)
		}
		return buf.Bytes(), nil
	default:
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		return c.indent(out)
	}
}

func (c *DecodeCommand) indent(out []byte) ([]byte, error) {
	if !c.Indent {
		return append(out, '\n'), nil
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, out, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')

	return buf.Bytes(), nil
}

func envelopeCompression(name string, cfg config.Global) (docxedit.Compression, error) {
	if name == "" {
		name = cfg.Envelope.Compression
	}
	if name == "" {
		return docxedit.CompZSTD, nil
	}

	return docxedit.ParseCompression(name)
}
