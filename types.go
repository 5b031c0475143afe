package docxedit

// BlockType tags the variant held by a Block.
type BlockType string

const (
	BlockParagraph BlockType = "paragraph"
	BlockTable     BlockType = "table"
)

// Alignment is a paragraph justification token as it appears in WordprocessingML.
//
// Values outside the four constants are tolerated everywhere and resolve to AlignLeft.
type Alignment string

const (
	AlignLeft    Alignment = "left"
	AlignCenter  Alignment = "center"
	AlignRight   Alignment = "right"
	AlignJustify Alignment = "both"
)

// Resolve returns the recognized alignment a reader will see for a.
// "justify" is accepted as a spelling of AlignJustify.
func (a Alignment) Resolve() Alignment {
	switch a {
	case AlignCenter, AlignRight, AlignJustify:
		return a
	case "justify":
		return AlignJustify
	default:
		return AlignLeft
	}
}

// Edge names one side of a table cell.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeLeft   Edge = "left"
	EdgeBottom Edge = "bottom"
	EdgeRight  Edge = "right"
)

// Edges lists the cell edges in the order WordprocessingML requires them.
var Edges = [4]Edge{EdgeTop, EdgeLeft, EdgeBottom, EdgeRight}

func (e Edge) valid() bool {
	switch e {
	case EdgeTop, EdgeLeft, EdgeBottom, EdgeRight:
		return true
	}
	return false
}

// BorderSpec describes the line drawn on one cell edge.
//
// Size is in eighths of a point, Style is a border token such as "single" or "double",
// and Color is a hex RGB value or "auto".
type BorderSpec struct {
	Size  int    `json:"sz"`
	Style string `json:"val"`
	Color string `json:"color"`
}

// CellBorders maps edges to border lines. Absent edges are not drawn.
type CellBorders map[Edge]BorderSpec

// Run is a span of paragraph text sharing one set of formatting.
//
// FontSize is in points; nil means the package default applies.
type Run struct {
	Text      string   `json:"text"`
	Bold      bool     `json:"bold"`
	Italic    bool     `json:"italic"`
	Underline bool     `json:"underline"`
	FontSize  *float64 `json:"font_size"`
}

type Paragraph struct {
	Alignment Alignment `json:"alignment"`
	IsBullet  bool      `json:"is_bullet"`
	Runs      []Run     `json:"runs"`
}

// Cell is one table cell. Text is re-emitted as a single run.
type Cell struct {
	Text    string      `json:"text"`
	Borders CellBorders `json:"borders,omitempty"`
}

// Table is a row-major grid of cells. Rows may differ in width.
type Table struct {
	Rows [][]Cell `json:"rows"`
}

// CellCount returns the total number of cells across all rows.
func (t *Table) CellCount() int {
	n := 0
	for _, row := range t.Rows {
		n += len(row)
	}
	return n
}

// Block is one top-level unit of a document body.
//
// Exactly one of Paragraph and Table is set, matching Type.
type Block struct {
	Type      BlockType  `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Table     *Table     `json:"table,omitempty"`
}

func NewParagraph(p Paragraph) Block {
	return Block{Type: BlockParagraph, Paragraph: &p}
}

func NewTable(t Table) Block {
	return Block{Type: BlockTable, Table: &t}
}

// Document is the structured representation of a document body.
//
// Blocks are kept in document order; position is the only addressing.
type Document struct {
	Blocks []Block `json:"blocks"`
}
