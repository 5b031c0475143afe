package docxedit

import (
	"fmt"
	"math"
)

// validateDocument checks the invariants Encode relies on.
func validateDocument(doc *Document, limits Limits) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrMalformedRepresentation)
	}
	if len(doc.Blocks) > limits.MaxBlocks {
		return fmt.Errorf("%w: too many blocks", ErrLimitExceeded)
	}
	for i := range doc.Blocks {
		if err := validateBlock(&doc.Blocks[i], limits); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

func validateBlock(b *Block, limits Limits) error {
	switch b.Type {
	case BlockParagraph:
		if b.Paragraph == nil || b.Table != nil {
			return fmt.Errorf("%w: paragraph block must carry exactly a paragraph", ErrMalformedRepresentation)
		}
		return validateParagraph(b.Paragraph, limits)
	case BlockTable:
		if b.Table == nil || b.Paragraph != nil {
			return fmt.Errorf("%w: table block must carry exactly a table", ErrMalformedRepresentation)
		}
		return validateTable(b.Table, limits)
	default:
		return fmt.Errorf("%w: unknown block type %q", ErrMalformedRepresentation, b.Type)
	}
}

func validateParagraph(p *Paragraph, limits Limits) error {
	if len(p.Runs) > limits.MaxRunsPerParagraph {
		return fmt.Errorf("%w: too many runs", ErrLimitExceeded)
	}
	for i, r := range p.Runs {
		if r.FontSize == nil {
			continue
		}
		sz := *r.FontSize
		if math.IsNaN(sz) || math.IsInf(sz, 0) || sz <= 0 {
			return fmt.Errorf("%w: run %d font size %v must be a positive number", ErrMalformedRepresentation, i, sz)
		}
		// w:sz is an integer count of half-points.
		if hp := math.Round(sz * 2); hp < 1 || hp > math.MaxInt32 {
			return fmt.Errorf("%w: run %d font size %v out of range", ErrMalformedRepresentation, i, sz)
		}
	}
	return nil
}

func validateTable(t *Table, limits Limits) error {
	if len(t.Rows) == 0 {
		return fmt.Errorf("%w: table has no rows", ErrMalformedRepresentation)
	}
	if t.CellCount() > limits.MaxCellsPerTable {
		return fmt.Errorf("%w: too many table cells", ErrLimitExceeded)
	}
	for i, row := range t.Rows {
		if len(row) == 0 {
			return fmt.Errorf("%w: table row %d has no cells", ErrMalformedRepresentation, i)
		}
		for j, cell := range row {
			if err := validateBorders(cell.Borders); err != nil {
				return fmt.Errorf("cell (%d,%d): %w", i, j, err)
			}
		}
	}
	return nil
}

func validateBorders(b CellBorders) error {
	for edge, spec := range b {
		if !edge.valid() {
			return fmt.Errorf("%w: unknown border edge %q", ErrMalformedRepresentation, edge)
		}
		if spec.Style == "" {
			return fmt.Errorf("%w: %s border has no style", ErrMalformedRepresentation, edge)
		}
		if spec.Color == "" {
			return fmt.Errorf("%w: %s border has no color", ErrMalformedRepresentation, edge)
		}
		if spec.Size < 0 {
			return fmt.Errorf("%w: %s border size %d is negative", ErrMalformedRepresentation, edge, spec.Size)
		}
	}
	return nil
}
