package docxedit

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Function variables for testing injection.
var (
	readAll = io.ReadAll
	zipOpen = func(zf *zip.File) (io.ReadCloser, error) { return zf.Open() }
)

const (
	partContentTypes = "[Content_Types].xml"
	partPackageRels  = "_rels/.rels"
	partDocument     = "word/document.xml"
)

// Decode reads a DOCX package from r and returns its body as a Document.
//
// The decoding process:
//  1. Reads the package bytes and opens them as a zip archive
//  2. Locates the main document part through _rels/.rels, falling back to word/document.xml
//  3. Walks the direct children of w:body in document order
//  4. Turns every w:p into a paragraph block and every w:tbl into a table block;
//     other body children (section properties, bookmarks, content controls) are skipped
//
// By default, Decode will:
//   - Use safe default size limits (see [DefaultLimits])
//   - Fail on table cells that contain no text node
//
// Use ReadOption functions to customize this behavior:
//   - WithReadLimits(l): set custom size limits
//   - WithLenientCells(true): read text-less cells as ""
//
// Decode returns ErrFormat if the package is unreadable or lacks an element the
// decoder needs, and ErrLimitExceeded if any size limit is exceeded.
func Decode(r io.Reader, opts ...ReadOption) (*Document, error) {
	cfg := readConfig{limits: defaultLimits()}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.limits = cfg.limits.withDefaults()

	data, err := readAll(io.LimitReader(r, int64(cfg.limits.MaxPackageSize)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading package: %w", ErrFormat, err)
	}
	if uint64(len(data)) > cfg.limits.MaxPackageSize {
		return nil, fmt.Errorf("%w: package larger than %d bytes", ErrLimitExceeded, cfg.limits.MaxPackageSize)
	}

	part, err := readMainPart(data, cfg.limits.MaxPartSize)
	if err != nil {
		return nil, err
	}
	return decodeBody(bytes.NewReader(part), cfg)
}

// readMainPart opens the package and returns the bytes of the main document part.
func readMainPart(data []byte, maxPart uint64) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: opening package: %v", ErrFormat, err)
	}
	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}
	if _, ok := files[partContentTypes]; !ok {
		return nil, fmt.Errorf("%w: missing required part %s", ErrFormat, partContentTypes)
	}

	name := partDocument
	if rels, ok := files[partPackageRels]; ok {
		b, err := readPart(rels, maxPart)
		if err != nil {
			return nil, err
		}
		if target := mainPartTarget(b); target != "" {
			name = target
		}
	}
	zf, ok := files[name]
	if !ok {
		return nil, fmt.Errorf("%w: missing required part %s", ErrFormat, name)
	}
	return readPart(zf, maxPart)
}

// readPart reads one archive entry, refusing to inflate more than limit bytes.
func readPart(zf *zip.File, limit uint64) ([]byte, error) {
	if zf.UncompressedSize64 > limit {
		return nil, fmt.Errorf("%w: part %s is %d bytes", ErrLimitExceeded, zf.Name, zf.UncompressedSize64)
	}
	rc, err := zipOpen(zf)
	if err != nil {
		return nil, fmt.Errorf("%w: opening part %s: %v", ErrFormat, zf.Name, err)
	}
	defer rc.Close()
	b, err := readAll(io.LimitReader(rc, int64(limit)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading part %s: %v", ErrFormat, zf.Name, err)
	}
	if uint64(len(b)) > limit {
		return nil, fmt.Errorf("%w: part %s expanded beyond %d bytes", ErrLimitExceeded, zf.Name, limit)
	}
	return b, nil
}

type packageRelsXML struct {
	Relationships []struct {
		Type   string `xml:"Type,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// mainPartTarget returns the zip entry name of the officeDocument relationship, or "".
func mainPartTarget(b []byte) string {
	var rels packageRelsXML
	if err := xml.Unmarshal(b, &rels); err != nil {
		return ""
	}
	for _, rel := range rels.Relationships {
		if !strings.HasSuffix(rel.Type, "/officeDocument") {
			continue
		}
		target := strings.TrimPrefix(path.Clean("/"+rel.Target), "/")
		if target == "" || target == "." {
			return ""
		}
		return target
	}
	return ""
}

// decodeBody walks the direct children of w:body in document order.
func decodeBody(r io.Reader, cfg readConfig) (*Document, error) {
	dec := xml.NewDecoder(r)
	doc := &Document{Blocks: []Block{}}
	inBody := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: document part: %v", ErrFormat, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if !inBody {
				inBody = isW(t.Name, "body")
				continue
			}
			block, ok, err := decodeBlock(dec, t, cfg)
			if err != nil {
				return nil, fmt.Errorf("block %d: %w", len(doc.Blocks), err)
			}
			if !ok {
				continue
			}
			if len(doc.Blocks) >= cfg.limits.MaxBlocks {
				return nil, fmt.Errorf("%w: too many blocks", ErrLimitExceeded)
			}
			doc.Blocks = append(doc.Blocks, block)
		case xml.EndElement:
			if inBody && isW(t.Name, "body") {
				return doc, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: document part has no complete w:body", ErrFormat)
}

// decodeBlock classifies one body child. ok is false for node kinds that are ignored.
func decodeBlock(dec *xml.Decoder, start xml.StartElement, cfg readConfig) (block Block, ok bool, err error) {
	switch {
	case isW(start.Name, "tbl"):
		var n xmlNode
		if err := dec.DecodeElement(&n, &start); err != nil {
			return Block{}, false, fmt.Errorf("%w: table: %v", ErrFormat, err)
		}
		t, err := decodeTable(&n, cfg)
		if err != nil {
			return Block{}, false, err
		}
		return Block{Type: BlockTable, Table: t}, true, nil
	case isW(start.Name, "p"):
		var n xmlNode
		if err := dec.DecodeElement(&n, &start); err != nil {
			return Block{}, false, fmt.Errorf("%w: paragraph: %v", ErrFormat, err)
		}
		p, err := decodeParagraph(&n, cfg.limits)
		if err != nil {
			return Block{}, false, err
		}
		return Block{Type: BlockParagraph, Paragraph: p}, true, nil
	default:
		if err := dec.Skip(); err != nil {
			return Block{}, false, fmt.Errorf("%w: %s: %v", ErrFormat, start.Name.Local, err)
		}
		return Block{}, false, nil
	}
}

func decodeTable(tbl *xmlNode, cfg readConfig) (*Table, error) {
	t := &Table{Rows: [][]Cell{}}
	cells := 0
	for i, tr := range tbl.children("tr") {
		row := []Cell{}
		for j, tc := range tr.children("tc") {
			cells++
			if cells > cfg.limits.MaxCellsPerTable {
				return nil, fmt.Errorf("%w: too many table cells", ErrLimitExceeded)
			}
			cell, err := decodeCell(tc, cfg.lenientCells)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", i, j, err)
			}
			row = append(row, cell)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func decodeCell(tc *xmlNode, lenient bool) (Cell, error) {
	text, ok := tc.text()
	if !ok && !lenient {
		return Cell{}, fmt.Errorf("%w: table cell has no text node", ErrFormat)
	}
	borders, err := decodeBorders(tc.child("tcPr").child("tcBorders"))
	if err != nil {
		return Cell{}, err
	}
	return Cell{Text: text, Borders: borders}, nil
}

// decodeBorders reads the per-edge elements of w:tcBorders. It returns nil when no
// edge is specified.
func decodeBorders(tcb *xmlNode) (CellBorders, error) {
	if tcb == nil {
		return nil, nil
	}
	var out CellBorders
	for _, edge := range Edges {
		n := tcb.child(string(edge))
		if n == nil {
			// Newer producers write start/end for left/right.
			switch edge {
			case EdgeLeft:
				n = tcb.child("start")
			case EdgeRight:
				n = tcb.child("end")
			}
		}
		if n == nil {
			continue
		}
		var spec BorderSpec
		if v, ok := n.attr("sz"); ok {
			sz, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %s border size %q", ErrFormat, edge, v)
			}
			spec.Size = sz
		}
		spec.Style, _ = n.attr("val")
		spec.Color, _ = n.attr("color")
		if out == nil {
			out = make(CellBorders, 4)
		}
		out[edge] = spec
	}
	return out, nil
}

func decodeParagraph(p *xmlNode, limits Limits) (*Paragraph, error) {
	para := &Paragraph{
		Alignment: AlignLeft,
		IsBullet:  p.hasDescendant("numPr"),
		Runs:      []Run{},
	}
	if v, ok := p.child("pPr").child("jc").attr("val"); ok {
		para.Alignment = parseAlignment(v)
	}
	for i, r := range p.descendants("r") {
		if i >= limits.MaxRunsPerParagraph {
			return nil, fmt.Errorf("%w: too many runs", ErrLimitExceeded)
		}
		run, err := decodeRun(r)
		if err != nil {
			return nil, fmt.Errorf("run %d: %w", i, err)
		}
		para.Runs = append(para.Runs, run)
	}
	return para, nil
}

func decodeRun(r *xmlNode) (Run, error) {
	var run Run
	run.Text, _ = r.text()
	rpr := r.child("rPr")
	run.Bold = toggleOn(rpr.child("b"))
	run.Italic = toggleOn(rpr.child("i"))
	if u := rpr.child("u"); u != nil {
		v, _ := u.attr("val")
		run.Underline = v != "none" && toggleOn(u)
	}
	if v, ok := rpr.child("sz").attr("val"); ok {
		hp, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(hp) || math.IsInf(hp, 0) {
			return Run{}, fmt.Errorf("%w: font size %q", ErrFormat, v)
		}
		// Sizes below one half-point carry no size; the package default applies.
		if math.Round(hp) >= 1 {
			pt := hp / 2
			run.FontSize = &pt
		}
	}
	return run, nil
}

// toggleOn reports whether a boolean property element is present and not switched off.
func toggleOn(n *xmlNode) bool {
	if n == nil {
		return false
	}
	switch v, _ := n.attr("val"); v {
	case "0", "false", "off":
		return false
	}
	return true
}

// parseAlignment maps a w:jc value to an Alignment. Unrecognized values resolve to left.
func parseAlignment(v string) Alignment {
	switch v {
	case "center":
		return AlignCenter
	case "right", "end":
		return AlignRight
	case "both", "justify", "distribute":
		return AlignJustify
	default:
		return AlignLeft
	}
}
