// Package docxedit converts word-processing documents (DOCX, the zipped Office Open XML
// package format) into an editable structured representation and back.
//
// The structured representation is a [Document]: an ordered sequence of [Block] values,
// each either a [Paragraph] or a [Table]. Decoding walks the body of word/document.xml
// top to bottom; encoding rebuilds a fresh package from the same blocks, so a document
// can be decoded, edited as data, and encoded again while keeping the supported
// formatting intact.
//
// # Supported Formatting
//
// Paragraphs carry an alignment (left, center, right, both), a bullet flag, and a
// sequence of runs. Runs carry text, bold, italic, underline and an optional font size
// in points. Tables carry cell text and per-cell borders (top, left, bottom, right),
// each with a size, style and color.
//
// Everything else in the source package (media, headers and footers, footnotes,
// tracked changes, styles other than bullets, merged cells, nested tables) is dropped.
//
// # Basic Usage
//
// To read a document:
//
//	f, _ := os.Open("input.docx")
//	defer f.Close()
//	doc, err := docxedit.Decode(f)
//
// To write one:
//
//	size := 12.0
//	doc := &docxedit.Document{Blocks: []docxedit.Block{
//		docxedit.NewParagraph(docxedit.Paragraph{
//			Alignment: docxedit.AlignCenter,
//			Runs:      []docxedit.Run{{Text: "Hello", Bold: true, FontSize: &size}},
//		}),
//	}}
//	out, _ := os.Create("output.docx")
//	defer out.Close()
//	err := docxedit.Encode(out, doc)
//
// # Wire Formats
//
// [Document] marshals to JSON with one record per run and per cell. [MarshalLegacy] and
// [UnmarshalLegacy] speak the older contract with parallel per-run arrays and a flat
// border list. [EncodeEnvelope] and [DecodeEnvelope] frame the JSON form in a small
// binary header with optional compression for transport between processes.
//
// # Errors
//
// Decoding fails with [ErrFormat] when the package lacks something the decoder needs.
// Encoding fails with [ErrMalformedRepresentation] when the input violates an invariant;
// in that case nothing is written. Unknown alignment values are not errors and resolve
// to left alignment.
package docxedit
