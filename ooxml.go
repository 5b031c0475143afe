package docxedit

import "encoding/xml"

// Element types for writing word/document.xml. Names carry the w: prefix literally
// so the output binds to the namespace declared on the root element.

type documentXML struct {
	XMLName xml.Name `xml:"w:document"`
	XmlnsW  string   `xml:"xmlns:w,attr"`
	XmlnsR  string   `xml:"xmlns:r,attr"`
	Body    bodyXML  `xml:"w:body"`
}

// bodyXML holds paragraphXML and tableXML values in document order.
type bodyXML struct {
	Content []any     `xml:",any"`
	SectPr  sectPrXML `xml:"w:sectPr"`
}

type valXML struct {
	Val string `xml:"w:val,attr"`
}

type emptyXML struct{}

type paragraphXML struct {
	XMLName xml.Name           `xml:"w:p"`
	Props   *paragraphPropsXML `xml:"w:pPr"`
	Runs    []runXML
}

// Field order follows CT_PPr.
type paragraphPropsXML struct {
	Style *valXML   `xml:"w:pStyle"`
	NumPr *numPrXML `xml:"w:numPr"`
	Jc    *valXML   `xml:"w:jc"`
}

type numPrXML struct {
	Ilvl  valXML `xml:"w:ilvl"`
	NumID valXML `xml:"w:numId"`
}

type runXML struct {
	XMLName xml.Name     `xml:"w:r"`
	Props   *runPropsXML `xml:"w:rPr"`
	Text    textXML      `xml:"w:t"`
}

// Field order follows CT_RPr.
type runPropsXML struct {
	Bold      *emptyXML `xml:"w:b"`
	Italic    *emptyXML `xml:"w:i"`
	Size      *valXML   `xml:"w:sz"`
	Underline *valXML   `xml:"w:u"`
}

type textXML struct {
	Space string `xml:"xml:space,attr,omitempty"`
	Value string `xml:",chardata"`
}

type tableXML struct {
	XMLName xml.Name      `xml:"w:tbl"`
	Props   tablePropsXML `xml:"w:tblPr"`
	Grid    tableGridXML  `xml:"w:tblGrid"`
	Rows    []tableRowXML
}

type tablePropsXML struct {
	Style valXML   `xml:"w:tblStyle"`
	Width widthXML `xml:"w:tblW"`
	Look  valXML   `xml:"w:tblLook"`
}

type widthXML struct {
	W    string `xml:"w:w,attr"`
	Type string `xml:"w:type,attr"`
}

type tableGridXML struct {
	Cols []gridColXML
}

type gridColXML struct {
	XMLName xml.Name `xml:"w:gridCol"`
	W       string   `xml:"w:w,attr"`
}

type tableRowXML struct {
	XMLName xml.Name `xml:"w:tr"`
	Cells   []tableCellXML
}

type tableCellXML struct {
	XMLName   xml.Name     `xml:"w:tc"`
	Props     cellPropsXML `xml:"w:tcPr"`
	Paragraph paragraphXML
}

type cellPropsXML struct {
	Width   widthXML        `xml:"w:tcW"`
	Borders *cellBordersXML `xml:"w:tcBorders"`
}

type cellBordersXML struct {
	Top    *borderXML `xml:"w:top"`
	Left   *borderXML `xml:"w:left"`
	Bottom *borderXML `xml:"w:bottom"`
	Right  *borderXML `xml:"w:right"`
}

type borderXML struct {
	Val   string `xml:"w:val,attr"`
	Sz    string `xml:"w:sz,attr"`
	Space string `xml:"w:space,attr"`
	Color string `xml:"w:color,attr"`
}

type sectPrXML struct {
	PgSz  pageSizeXML   `xml:"w:pgSz"`
	PgMar pageMarginXML `xml:"w:pgMar"`
}

type pageSizeXML struct {
	W string `xml:"w:w,attr"`
	H string `xml:"w:h,attr"`
}

type pageMarginXML struct {
	Top    string `xml:"w:top,attr"`
	Right  string `xml:"w:right,attr"`
	Bottom string `xml:"w:bottom,attr"`
	Left   string `xml:"w:left,attr"`
	Header string `xml:"w:header,attr"`
	Footer string `xml:"w:footer,attr"`
	Gutter string `xml:"w:gutter,attr"`
}
