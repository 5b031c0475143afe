package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	urfave "github.com/urfave/cli"

	"github.com/logicossoftware/go-docxedit"
	"github.com/logicossoftware/go-docxedit/internal/assertions"
	"github.com/logicossoftware/go-docxedit/internal/cli"
	"github.com/logicossoftware/go-docxedit/internal/config"
	"github.com/logicossoftware/go-docxedit/internal/logging/test"
)

func newContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	require.NoError(t, set.Parse(args))

	ctx := &cli.Context{
		Ctx: context.Background(),
		Cli: urfave.NewContext(nil, set, nil),
	}
	ctx.SetConfig(config.Default())
	ctx.SetLogger(test.NewNullLogger())

	return ctx
}

func testFiles(stdin []byte) (files, *bytes.Buffer) {
	stdout := new(bytes.Buffer)

	return files{fs: afero.NewMemMapFs(), stdin: bytes.NewReader(stdin), stdout: stdout}, stdout
}

func sampleDocument() *docxedit.Document {
	size := 10.5

	return &docxedit.Document{Blocks: []docxedit.Block{
		{Type: docxedit.BlockParagraph, Paragraph: &docxedit.Paragraph{
			Alignment: docxedit.AlignJustify,
			Runs: []docxedit.Run{
				{Text: "Plain "},
				{Text: "styled", Bold: true, Underline: true, FontSize: &size},
			},
		}},
		{Type: docxedit.BlockParagraph, Paragraph: &docxedit.Paragraph{
			Alignment: docxedit.AlignLeft,
			IsBullet:  true,
			Runs:      []docxedit.Run{{Text: "item"}},
		}},
		{Type: docxedit.BlockTable, Table: &docxedit.Table{Rows: [][]docxedit.Cell{
			{{Text: "a"}, {Text: "b", Borders: docxedit.CellBorders{
				docxedit.EdgeBottom: {Size: 12, Style: "single", Color: "000000"},
			}}},
		}}},
	}}
}

func sampleDOCX(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, docxedit.Encode(&buf, sampleDocument()))

	return buf.Bytes()
}

func equateDocuments() cmp.Option {
	return cmpopts.EquateEmpty()
}

func TestDecodeCommand_JSONToFile(t *testing.T) {
	f, stdout := testFiles(nil)
	require.NoError(t, afero.WriteFile(f.fs, "in.docx", sampleDOCX(t), 0644))

	cmd := &DecodeCommand{files: f, Format: FormatJSON, Output: "out.json"}
	require.NoError(t, cmd.Execute(newContext(t, "in.docx")))
	assert.Zero(t, stdout.Len())

	data, err := afero.ReadFile(f.fs, "out.json")
	require.NoError(t, err)

	var doc docxedit.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	if diff := cmp.Diff(sampleDocument(), &doc, equateDocuments()); diff != "" {
		t.Errorf("decoded document mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommand_LegacyToStdout(t *testing.T) {
	f, stdout := testFiles(sampleDOCX(t))

	cmd := &DecodeCommand{files: f, Format: FormatLegacy}
	require.NoError(t, cmd.Execute(newContext(t)))

	doc, err := docxedit.UnmarshalLegacy(stdout.Bytes())
	require.NoError(t, err)
	if diff := cmp.Diff(sampleDocument(), doc, equateDocuments()); diff != "" {
		t.Errorf("legacy output mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeCommand_Indent(t *testing.T) {
	f, stdout := testFiles(sampleDOCX(t))

	cmd := &DecodeCommand{files: f, Format: FormatJSON, Indent: true}
	require.NoError(t, cmd.Execute(newContext(t, "-")))

	assert.Contains(t, stdout.String(), "\n  \"blocks\": [")
}

func TestDecodeCommand_EnvelopeRoundTrip(t *testing.T) {
	for _, comp := range []string{"", "none", "zip", "zstd", "lz4", "br"} {
		t.Run("compression="+comp, func(t *testing.T) {
			f, stdout := testFiles(sampleDOCX(t))

			dec := &DecodeCommand{files: f, Format: FormatEnvelope, Compression: comp}
			require.NoError(t, dec.Execute(newContext(t)))
			assert.True(t, bytes.HasPrefix(stdout.Bytes(), docxedit.EnvelopeMagic[:]))

			g, out := testFiles(stdout.Bytes())
			enc := &EncodeCommand{files: g, Format: FormatEnvelope}
			require.NoError(t, enc.Execute(newContext(t)))

			doc, err := docxedit.Decode(bytes.NewReader(out.Bytes()))
			require.NoError(t, err)
			if diff := cmp.Diff(sampleDocument(), doc, equateDocuments()); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeCommand_Errors(t *testing.T) {
	t.Run("unknown format", func(t *testing.T) {
		f, _ := testFiles(sampleDOCX(t))
		cmd := &DecodeCommand{files: f, Format: "xml"}

		assert.Error(t, cmd.Execute(newContext(t)))
	})

	t.Run("unknown compression", func(t *testing.T) {
		f, _ := testFiles(sampleDOCX(t))
		cmd := &DecodeCommand{files: f, Format: FormatEnvelope, Compression: "gzip"}

		assertions.ErrorIs(t, cmd.Execute(newContext(t)), docxedit.ErrInvalidPayload)
	})

	t.Run("not a package", func(t *testing.T) {
		f, stdout := testFiles([]byte("not a zip"))
		cmd := &DecodeCommand{files: f, Format: FormatJSON}

		assertions.ErrorIs(t, cmd.Execute(newContext(t)), docxedit.ErrFormat)
		assert.Zero(t, stdout.Len())
	})

	t.Run("missing input", func(t *testing.T) {
		f, _ := testFiles(nil)
		cmd := &DecodeCommand{files: f, Format: FormatJSON}

		assert.Error(t, cmd.Execute(newContext(t, "missing.docx")))
	})
}

func TestEncodeCommand_Legacy(t *testing.T) {
	legacy, err := docxedit.MarshalLegacy(sampleDocument())
	require.NoError(t, err)

	f, _ := testFiles(nil)
	require.NoError(t, afero.WriteFile(f.fs, "in.json", legacy, 0644))

	cmd := &EncodeCommand{files: f, Format: FormatLegacy, Output: "out.docx", Title: "Report"}
	require.NoError(t, cmd.Execute(newContext(t, "in.json")))

	data, err := afero.ReadFile(f.fs, "out.docx")
	require.NoError(t, err)

	doc, err := docxedit.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	if diff := cmp.Diff(sampleDocument(), doc, equateDocuments()); diff != "" {
		t.Errorf("document mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeCommand_MalformedWritesNothing(t *testing.T) {
	tests := map[string]struct {
		format string
		input  string
	}{
		"legacy length mismatch": {
			format: FormatLegacy,
			input:  `[{"type":"paragraph","text":["a"],"bold":[],"italic":[false],"underline":[false],"font_size":[null],"alignment":"left","is_bullet":false}]`,
		},
		"json unknown block": {
			format: FormatJSON,
			input:  `{"blocks":[{"type":"image"}]}`,
		},
		"json empty table": {
			format: FormatJSON,
			input:  `{"blocks":[{"type":"table","table":{"rows":[]}}]}`,
		},
	}

	for tn, tc := range tests {
		t.Run(tn, func(t *testing.T) {
			f, stdout := testFiles([]byte(tc.input))

			cmd := &EncodeCommand{files: f, Format: tc.format, Output: "out.docx"}
			err := cmd.Execute(newContext(t))
			assertions.ErrorIs(t, err, docxedit.ErrMalformedRepresentation)

			exists, err := afero.Exists(f.fs, "out.docx")
			require.NoError(t, err)
			assert.False(t, exists)
			assert.Zero(t, stdout.Len())
		})
	}
}

func TestEnvelopeCompression(t *testing.T) {
	cfg := config.Default()

	comp, err := envelopeCompression("", cfg)
	require.NoError(t, err)
	assert.Equal(t, docxedit.CompZSTD, comp)

	cfg.Envelope.Compression = "br"
	comp, err = envelopeCompression("", cfg)
	require.NoError(t, err)
	assert.Equal(t, docxedit.CompBR, comp)

	comp, err = envelopeCompression("lz4", cfg)
	require.NoError(t, err)
	assert.Equal(t, docxedit.CompLZ4, comp)
}

func TestCheckFormat(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatLegacy, FormatEnvelope} {
		assert.NoError(t, checkFormat(format))
	}
	assert.Error(t, checkFormat("yaml"))
}
