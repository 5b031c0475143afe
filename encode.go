package docxedit

import (
	"bytes"
	"encoding/xml"
	"io"
	"math"
	"strconv"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// Function variables for testing injection.
var (
	xmlMarshal = xml.Marshal
	zipCreate  = func(zw *zip.Writer, name string) (io.Writer, error) { return zw.Create(name) }
	zipClose   = func(zw *zip.Writer) error { return zw.Close() }
)

// Encode writes doc to w as a new DOCX package.
//
// The document is validated before anything is written. Validation includes checking that:
//   - Every block carries the payload its Type names
//   - Tables have at least one row and every row at least one cell
//   - Every border edge is a known edge with a style, a color and a non-negative size
//   - Font sizes are positive, finite and at least half a point
//   - Size limits are not exceeded
//
// Blocks are written in order. Alignment values other than left, center, right and
// both are written as left. Bold, italic and underline are only written when set, and
// a run without a font size inherits the package default. The whole package is built
// in memory first, so a failure never leaves partial output in w.
//
// Use WriteOption functions to customize this behavior:
//   - WithWriteLimits(l): set custom size limits
//   - WithPackageCompression(level): change the deflate level of the package entries
//   - WithBulletStyle(id): change the paragraph style applied to bullets
//   - WithCoreProperties(title, creator): record document properties
func Encode(w io.Writer, doc *Document, opts ...WriteOption) error {
	cfg := writeConfig{
		limits:      defaultLimits(),
		level:       flate.DefaultCompression,
		bulletStyle: defaultBulletStyle,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()
	if cfg.bulletStyle == "" {
		cfg.bulletStyle = defaultBulletStyle
	}

	if err := validateDocument(doc, cfg.limits); err != nil {
		return err
	}

	body, err := buildDocumentPart(doc, &cfg)
	if err != nil {
		return err
	}
	parts := []packagePart{
		{name: partContentTypes, data: []byte(contentTypesXML)},
		{name: partPackageRels, data: []byte(packageRelsXMLPart)},
		{name: partDocument, data: body},
		{name: "word/_rels/document.xml.rels", data: []byte(documentRelsXML)},
		{name: "word/styles.xml", data: stylesXML(cfg.bulletStyle)},
		{name: "word/numbering.xml", data: []byte(numberingXML)},
		{name: "word/settings.xml", data: []byte(settingsXML)},
		{name: "docProps/core.xml", data: corePropsXML(cfg.title, cfg.creator)},
		{name: "docProps/app.xml", data: []byte(appXML)},
	}

	var buf bytes.Buffer
	if err := writePackage(&buf, parts, cfg.deflateLevel()); err != nil {
		return err
	}
	_, err = buf.WriteTo(w)
	return err
}

// writePackage writes parts as a zip archive using deflate at the given level.
func writePackage(w io.Writer, parts []packagePart, level int) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})
	for _, p := range parts {
		entry, err := zipCreate(zw, p.name)
		if err != nil {
			_ = zipClose(zw)
			return err
		}
		if _, err := entry.Write(p.data); err != nil {
			_ = zipClose(zw)
			return err
		}
	}
	return zipClose(zw)
}

// buildDocumentPart renders word/document.xml for doc.
func buildDocumentPart(doc *Document, cfg *writeConfig) ([]byte, error) {
	root := documentXML{
		XmlnsW: nsW,
		XmlnsR: nsR,
		Body: bodyXML{
			Content: make([]any, 0, len(doc.Blocks)),
			SectPr: sectPrXML{
				PgSz: pageSizeXML{W: strconv.Itoa(pageWidthTwips), H: strconv.Itoa(pageHeightTwips)},
				PgMar: pageMarginXML{
					Top: strconv.Itoa(marginTwips), Right: strconv.Itoa(marginTwips),
					Bottom: strconv.Itoa(marginTwips), Left: strconv.Itoa(marginTwips),
					Header: "720", Footer: "720", Gutter: "0",
				},
			},
		},
	}
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		switch b.Type {
		case BlockParagraph:
			root.Body.Content = append(root.Body.Content, buildParagraph(b.Paragraph, cfg.bulletStyle))
		case BlockTable:
			root.Body.Content = append(root.Body.Content, buildTable(b.Table))
		}
	}
	out, err := xmlMarshal(root)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func buildParagraph(p *Paragraph, bulletStyle string) paragraphXML {
	props := &paragraphPropsXML{Jc: &valXML{Val: string(p.Alignment.Resolve())}}
	if p.IsBullet {
		// The numbering reference is written on the paragraph too, so the bullet
		// survives a reader that does not resolve styles.
		props.Style = &valXML{Val: bulletStyle}
		props.NumPr = &numPrXML{Ilvl: valXML{Val: "0"}, NumID: valXML{Val: bulletNumID}}
	}
	px := paragraphXML{Props: props}
	for _, r := range p.Runs {
		px.Runs = append(px.Runs, buildRun(r))
	}
	return px
}

func buildRun(r Run) runXML {
	rx := runXML{Text: textXML{Space: "preserve", Value: r.Text}}
	var props runPropsXML
	set := false
	if r.Bold {
		props.Bold = &emptyXML{}
		set = true
	}
	if r.Italic {
		props.Italic = &emptyXML{}
		set = true
	}
	if r.FontSize != nil {
		props.Size = &valXML{Val: strconv.Itoa(halfPoints(*r.FontSize))}
		set = true
	}
	if r.Underline {
		props.Underline = &valXML{Val: "single"}
		set = true
	}
	if set {
		rx.Props = &props
	}
	return rx
}

// halfPoints converts a size in points to the nearest whole half-point.
func halfPoints(pt float64) int {
	return int(math.Round(pt * 2))
}

func buildTable(t *Table) tableXML {
	cols := 0
	for _, row := range t.Rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	colWidth := strconv.Itoa(textWidthTwips / cols)
	tx := tableXML{
		Props: tablePropsXML{
			Style: valXML{Val: "TableGrid"},
			Width: widthXML{W: "0", Type: "auto"},
			Look:  valXML{Val: "04A0"},
		},
	}
	for i := 0; i < cols; i++ {
		tx.Grid.Cols = append(tx.Grid.Cols, gridColXML{W: colWidth})
	}
	for _, row := range t.Rows {
		var rx tableRowXML
		for _, cell := range row {
			rx.Cells = append(rx.Cells, buildCell(cell, colWidth))
		}
		tx.Rows = append(tx.Rows, rx)
	}
	return tx
}

func buildCell(c Cell, width string) tableCellXML {
	cx := tableCellXML{
		Props: cellPropsXML{Width: widthXML{W: width, Type: "dxa"}},
		Paragraph: paragraphXML{
			Runs: []runXML{{Text: textXML{Space: "preserve", Value: c.Text}}},
		},
	}
	if len(c.Borders) > 0 {
		cx.Props.Borders = &cellBordersXML{
			Top:    buildBorder(c.Borders, EdgeTop),
			Left:   buildBorder(c.Borders, EdgeLeft),
			Bottom: buildBorder(c.Borders, EdgeBottom),
			Right:  buildBorder(c.Borders, EdgeRight),
		}
	}
	return cx
}

func buildBorder(b CellBorders, edge Edge) *borderXML {
	spec, ok := b[edge]
	if !ok {
		return nil
	}
	return &borderXML{
		Val:   spec.Style,
		Sz:    strconv.Itoa(spec.Size),
		Space: "0",
		Color: spec.Color,
	}
}
