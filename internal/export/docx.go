package export

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lex-research/internal/report"
)

// footerText is the fixed closing section appended to every exported
// document.
const footerText = "本报告由系统自动生成，仅供参考，不构成法律意见。"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:styleId="Heading1">
<w:name w:val="heading 1"/>
<w:pPr><w:spacing w:before="240" w:after="120"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="32"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Heading2">
<w:name w:val="heading 2"/>
<w:pPr><w:spacing w:before="200" w:after="100"/></w:pPr>
<w:rPr><w:b/><w:sz w:val="26"/></w:rPr>
</w:style>
<w:style w:type="paragraph" w:styleId="Quote">
<w:name w:val="Quote"/>
<w:pPr><w:ind w:left="720"/></w:pPr>
<w:rPr><w:i/><w:color w:val="595959"/></w:rPr>
</w:style>
</w:styles>`

// WriteDocx renders blocks into a .docx archive held fully in memory.
// Nothing is written on failure.
func WriteDocx(blocks []report.Block) ([]byte, error) {
	if len(blocks) == 0 {
		return nil, eris.New("export: no blocks to write")
	}

	doc, err := buildDocumentXML(blocks)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		body string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
		{"word/document.xml", doc},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, eris.Wrapf(err, "export: create %s", p.name)
		}
		if _, err := w.Write([]byte(p.body)); err != nil {
			return nil, eris.Wrapf(err, "export: write %s", p.name)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, eris.Wrap(err, "export: close archive")
	}

	return buf.Bytes(), nil
}

func buildDocumentXML(blocks []report.Block) (string, error) {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	all := append(append([]report.Block{}, blocks...), report.Block{Kind: report.BlockParagraph, Text: footerText})
	for _, blk := range all {
		if err := writeParagraph(&b, blk); err != nil {
			return "", err
		}
	}

	b.WriteString(`</w:body></w:document>`)
	return b.String(), nil
}

func writeParagraph(b *strings.Builder, blk report.Block) error {
	var style string
	switch blk.Kind {
	case report.BlockHeading1:
		style = "Heading1"
	case report.BlockHeading2:
		style = "Heading2"
	case report.BlockLegalBasis:
		style = "Quote"
	case report.BlockParagraph:
		// default paragraph style
	default:
		return eris.Errorf("export: unknown block kind %d", blk.Kind)
	}

	b.WriteString(`<w:p>`)
	if style != "" {
		fmt.Fprintf(b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	b.WriteString(`<w:r>`)
	for i, line := range strings.Split(blk.Text, "\n") {
		if i > 0 {
			b.WriteString(`<w:br/>`)
		}
		b.WriteString(`<w:t xml:space="preserve">`)
		if err := xml.EscapeText(b, []byte(line)); err != nil {
			return eris.Wrap(err, "export: escape text")
		}
		b.WriteString(`</w:t>`)
	}
	b.WriteString(`</w:r></w:p>`)
	return nil
}

// Filename returns the deterministic attachment name for an export.
func Filename(jurisdiction string, now time.Time) string {
	return fmt.Sprintf("数据隐私准入法律检索报告_%s_%s.docx", jurisdiction, now.Format("20060102150405"))
}
