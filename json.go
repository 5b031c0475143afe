package docxedit

import (
	"encoding/json"
	"fmt"
)

// UnmarshalJSON decodes a block and checks that its payload matches its type.
func (b *Block) UnmarshalJSON(data []byte) error {
	type plain Block
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRepresentation, err)
	}
	switch v.Type {
	case BlockParagraph:
		if v.Paragraph == nil || v.Table != nil {
			return fmt.Errorf("%w: paragraph block must carry exactly a paragraph", ErrMalformedRepresentation)
		}
	case BlockTable:
		if v.Table == nil || v.Paragraph != nil {
			return fmt.Errorf("%w: table block must carry exactly a table", ErrMalformedRepresentation)
		}
	default:
		return fmt.Errorf("%w: unknown block type %q", ErrMalformedRepresentation, v.Type)
	}
	*b = Block(v)
	return nil
}

// MarshalJSON writes an empty block list as [] rather than null.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	v := plain(d)
	if v.Blocks == nil {
		v.Blocks = []Block{}
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes a border edge. sz, val and color must all be present.
func (s *BorderSpec) UnmarshalJSON(data []byte) error {
	var v struct {
		Size  *int    `json:"sz"`
		Style *string `json:"val"`
		Color *string `json:"color"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRepresentation, err)
	}
	if v.Size == nil || v.Style == nil || v.Color == nil {
		return fmt.Errorf("%w: border needs sz, val and color", ErrMalformedRepresentation)
	}
	*s = BorderSpec{Size: *v.Size, Style: *v.Style, Color: *v.Color}
	return nil
}
