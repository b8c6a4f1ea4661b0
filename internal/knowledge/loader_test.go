package knowledge

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/sells-group/lex-research/internal/model"
)

// writeDocx writes a minimal .docx archive whose body consists of the given
// paragraphs, with an optional table paragraph that extraction must skip.
func writeDocx(t *testing.T, path string, paragraphs []string, tableText string) {
	t.Helper()

	var doc bytes.Buffer
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, p := range paragraphs {
		doc.WriteString(`<w:p><w:r><w:t>` + p + `</w:t></w:r></w:p>`)
	}
	if tableText != "" {
		doc.WriteString(`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>` + tableText + `</w:t></w:r></w:p></w:tc></w:tr></w:tbl>`)
	}
	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write(doc.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func newTestLoader(t *testing.T) (*Loader, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLoader(dir, model.DefaultCatalog()), dir
}

func TestLoadCorpusContainsLawNames(t *testing.T) {
	l, dir := newTestLoader(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "英国_数据保护法.txt"), []byte("第一条 数据控制者应当注册登记。"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "英国_隐私条例.txt"), []byte("第二条 费用缴纳规定。"), 0o644))

	corpus := l.LoadCorpus("英国")
	require.NotEmpty(t, corpus)
	assert.Contains(t, corpus, "=== 英国 - 数据保护法 ===")
	assert.Contains(t, corpus, "=== 英国 - 隐私条例 ===")
	assert.Contains(t, corpus, "第一条 数据控制者应当注册登记。")
	assert.Contains(t, corpus, SectionDelimiter)
}

func TestLoadCorpusUnknownJurisdiction(t *testing.T) {
	l, dir := newTestLoader(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "日本_个人信息保护法.txt"), []byte("内容"), 0o644))

	assert.Empty(t, l.LoadCorpus("日本"))
}

func TestLoadCorpusNoDocuments(t *testing.T) {
	l, _ := newTestLoader(t)
	assert.Empty(t, l.LoadCorpus("英国"))
}

func TestLoadCorpusEUMemberGetsGDPROnce(t *testing.T) {
	l, dir := newTestLoader(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "法国_数据保护法.txt"), []byte("法国国内法，另见GDPR。"), 0o644))
	writeDocx(t, filepath.Join(dir, "欧盟_GDPR.docx"), []string{"第83条 行政罚款。"}, "")

	corpus := l.LoadCorpus("法国")
	require.NotEmpty(t, corpus)
	assert.Contains(t, corpus, "=== 法国 - 数据保护法 ===")
	assert.Contains(t, corpus, "第83条 行政罚款。")
	// The shared document appears exactly once even though the local file
	// mentions GDPR by name.
	assert.Equal(t, 1, strings.Count(corpus, "欧盟_GDPR.docx"))
}

func TestLoadCorpusNonEUDoesNotGetGDPR(t *testing.T) {
	l, dir := newTestLoader(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "英国_数据保护法.txt"), []byte("内容"), 0o644))
	writeDocx(t, filepath.Join(dir, "欧盟_GDPR.docx"), []string{"第83条"}, "")

	corpus := l.LoadCorpus("英国")
	assert.NotContains(t, corpus, "欧盟_GDPR.docx")
}

func TestLoadCorpusGBKFallback(t *testing.T) {
	l, dir := newTestLoader(t)

	gbk, _, err := transform.Bytes(simplifiedchinese.GBK.NewEncoder(), []byte("数据保护机构注册规定"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "加拿大_隐私法.txt"), gbk, 0o644))

	corpus := l.LoadCorpus("加拿大")
	assert.Contains(t, corpus, "数据保护机构注册规定")
}

func TestLoadCorpusSkipsUnreadableFile(t *testing.T) {
	l, dir := newTestLoader(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "德国_联邦数据保护法.txt"), []byte("正文"), 0o644))
	// Corrupt docx: not a zip archive.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "德国_损坏文档.docx"), []byte("not a zip"), 0o644))

	corpus := l.LoadCorpus("德国")
	assert.Contains(t, corpus, "=== 德国 - 联邦数据保护法 ===")
	assert.NotContains(t, corpus, "损坏文档")
}

func TestLoadCorpusLegacyFilename(t *testing.T) {
	l, dir := newTestLoader(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "土耳其.txt"), []byte("旧格式内容"), 0o644))

	corpus := l.LoadCorpus("土耳其")
	assert.Contains(t, corpus, "=== 土耳其 - 法律法规 ===")
	assert.Contains(t, corpus, "旧格式内容")
}

func TestReadDocxTextSkipsTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.docx")
	writeDocx(t, path, []string{"第一段", "第二段"}, "表格内容")

	text, err := ReadDocxText(path)
	require.NoError(t, err)
	assert.Equal(t, "第一段\n第二段", text)
	assert.NotContains(t, text, "表格内容")
}

func TestReadDocxTextMissingDocumentPart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.docx")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/other.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<x/>"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	_, err = ReadDocxText(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "word/document.xml")
}
