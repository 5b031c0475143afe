package docxedit

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The legacy representation is the block list exchanged with existing editor
// front ends. Paragraph runs travel as index-aligned arrays and table borders as
// one flat list in row-major cell order.

type legacyParagraph struct {
	Type      BlockType  `json:"type"`
	Text      []string   `json:"text"`
	Bold      []bool     `json:"bold"`
	Italic    []bool     `json:"italic"`
	Underline []bool     `json:"underline"`
	FontSize  []*float64 `json:"font_size"`
	Alignment Alignment  `json:"alignment"`
	IsBullet  bool       `json:"is_bullet"`
}

type legacyTable struct {
	Type    BlockType               `json:"type"`
	Rows    [][]string              `json:"rows"`
	Borders []map[Edge]legacyBorder `json:"borders"`
}

type legacyBorder struct {
	Sz    *legacySize `json:"sz"`
	Val   *string     `json:"val"`
	Color *string     `json:"color"`
}

// legacySize is written as a decimal string. Reading also accepts a JSON integer.
type legacySize int

func (s legacySize) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(int(s)))
}

func (s *legacySize) UnmarshalJSON(b []byte) error {
	var text string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &text); err != nil {
			return err
		}
	} else {
		text = string(b)
	}
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return fmt.Errorf("%w: border size %s is not an integer", ErrMalformedRepresentation, b)
	}
	*s = legacySize(n)
	return nil
}

// MarshalLegacy renders doc in the legacy block list format.
//
// Every paragraph's text, bold, italic, underline and font_size arrays have one
// entry per run. Every table carries exactly one border object per cell, {} for
// cells without borders.
func MarshalLegacy(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrMalformedRepresentation)
	}
	out := make([]any, 0, len(doc.Blocks))
	for i := range doc.Blocks {
		b := &doc.Blocks[i]
		switch {
		case b.Type == BlockParagraph && b.Paragraph != nil:
			out = append(out, toLegacyParagraph(b.Paragraph))
		case b.Type == BlockTable && b.Table != nil:
			out = append(out, toLegacyTable(b.Table))
		default:
			return nil, fmt.Errorf("block %d: %w: unknown block type %q", i, ErrMalformedRepresentation, b.Type)
		}
	}
	return jsonMarshal(out)
}

func toLegacyParagraph(p *Paragraph) legacyParagraph {
	n := len(p.Runs)
	lp := legacyParagraph{
		Type:      BlockParagraph,
		Text:      make([]string, 0, n),
		Bold:      make([]bool, 0, n),
		Italic:    make([]bool, 0, n),
		Underline: make([]bool, 0, n),
		FontSize:  make([]*float64, 0, n),
		Alignment: p.Alignment.Resolve(),
		IsBullet:  p.IsBullet,
	}
	for _, r := range p.Runs {
		lp.Text = append(lp.Text, r.Text)
		lp.Bold = append(lp.Bold, r.Bold)
		lp.Italic = append(lp.Italic, r.Italic)
		lp.Underline = append(lp.Underline, r.Underline)
		lp.FontSize = append(lp.FontSize, r.FontSize)
	}
	return lp
}

func toLegacyTable(t *Table) legacyTable {
	lt := legacyTable{
		Type:    BlockTable,
		Rows:    make([][]string, 0, len(t.Rows)),
		Borders: make([]map[Edge]legacyBorder, 0, t.CellCount()),
	}
	for _, row := range t.Rows {
		texts := make([]string, 0, len(row))
		for _, cell := range row {
			texts = append(texts, cell.Text)
			m := make(map[Edge]legacyBorder, len(cell.Borders))
			for edge, spec := range cell.Borders {
				sz := legacySize(spec.Size)
				val, color := spec.Style, spec.Color
				m[edge] = legacyBorder{Sz: &sz, Val: &val, Color: &color}
			}
			lt.Borders = append(lt.Borders, m)
		}
		lt.Rows = append(lt.Rows, texts)
	}
	return lt
}

// UnmarshalLegacy parses a legacy block list.
//
// It returns ErrMalformedRepresentation when a paragraph's parallel arrays differ
// in length, when a table's border list does not hold exactly one entry per cell,
// or when a border edge lacks its sz, val or color. A table without a borders
// field has no borders.
func UnmarshalLegacy(data []byte) (*Document, error) {
	var raw []json.RawMessage
	if err := jsonUnmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRepresentation, err)
	}
	doc := &Document{Blocks: make([]Block, 0, len(raw))}
	for i, item := range raw {
		b, err := fromLegacyBlock(item)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		doc.Blocks = append(doc.Blocks, b)
	}
	return doc, nil
}

func fromLegacyBlock(item json.RawMessage) (Block, error) {
	var head struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(item, &head); err != nil {
		return Block{}, fmt.Errorf("%w: %v", ErrMalformedRepresentation, err)
	}
	switch head.Type {
	case BlockParagraph:
		var lp legacyParagraph
		if err := decodeLegacy(item, &lp); err != nil {
			return Block{}, err
		}
		p, err := fromLegacyParagraph(&lp)
		if err != nil {
			return Block{}, err
		}
		return Block{Type: BlockParagraph, Paragraph: p}, nil
	case BlockTable:
		var lt legacyTable
		if err := decodeLegacy(item, &lt); err != nil {
			return Block{}, err
		}
		t, err := fromLegacyTable(&lt)
		if err != nil {
			return Block{}, err
		}
		return Block{Type: BlockTable, Table: t}, nil
	default:
		return Block{}, fmt.Errorf("%w: unknown block type %q", ErrMalformedRepresentation, head.Type)
	}
}

func decodeLegacy(item json.RawMessage, v any) error {
	if err := json.Unmarshal(item, v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRepresentation, err)
	}
	return nil
}

func fromLegacyParagraph(lp *legacyParagraph) (*Paragraph, error) {
	n := len(lp.Text)
	if len(lp.Bold) != n || len(lp.Italic) != n || len(lp.Underline) != n || len(lp.FontSize) != n {
		return nil, fmt.Errorf("%w: run arrays differ in length (text %d, bold %d, italic %d, underline %d, font_size %d)",
			ErrMalformedRepresentation, n, len(lp.Bold), len(lp.Italic), len(lp.Underline), len(lp.FontSize))
	}
	p := &Paragraph{
		Alignment: lp.Alignment,
		IsBullet:  lp.IsBullet,
		Runs:      make([]Run, 0, n),
	}
	if p.Alignment == "" {
		p.Alignment = AlignLeft
	}
	for i := 0; i < n; i++ {
		p.Runs = append(p.Runs, Run{
			Text:      lp.Text[i],
			Bold:      lp.Bold[i],
			Italic:    lp.Italic[i],
			Underline: lp.Underline[i],
			FontSize:  lp.FontSize[i],
		})
	}
	return p, nil
}

func fromLegacyTable(lt *legacyTable) (*Table, error) {
	total := 0
	for _, row := range lt.Rows {
		total += len(row)
	}
	if lt.Borders != nil && len(lt.Borders) != total {
		return nil, fmt.Errorf("%w: %d border entries for %d cells", ErrMalformedRepresentation, len(lt.Borders), total)
	}
	t := &Table{Rows: make([][]Cell, 0, len(lt.Rows))}
	offset := 0
	for i, row := range lt.Rows {
		cells := make([]Cell, 0, len(row))
		for j, text := range row {
			cell := Cell{Text: text}
			if lt.Borders != nil {
				borders, err := fromLegacyBorders(lt.Borders[offset+j])
				if err != nil {
					return nil, fmt.Errorf("cell (%d,%d): %w", i, j, err)
				}
				cell.Borders = borders
			}
			cells = append(cells, cell)
		}
		offset += len(row)
		t.Rows = append(t.Rows, cells)
	}
	return t, nil
}

func fromLegacyBorders(m map[Edge]legacyBorder) (CellBorders, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(CellBorders, len(m))
	for edge, lb := range m {
		if lb.Sz == nil || lb.Val == nil || lb.Color == nil {
			return nil, fmt.Errorf("%w: %s border needs sz, val and color", ErrMalformedRepresentation, edge)
		}
		out[edge] = BorderSpec{Size: int(*lb.Sz), Style: *lb.Val, Color: *lb.Color}
	}
	return out, nil
}
