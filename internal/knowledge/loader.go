package knowledge

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"github.com/sells-group/lex-research/internal/model"
)

// SectionDelimiter separates per-document blocks inside a corpus. The
// relevance extractor splits on it, so it must never appear in document
// text.
const SectionDelimiter = "----------------------------------------"

// gdprFilename is the shared supranational document loaded for every EU
// member jurisdiction.
const gdprFilename = "欧盟_GDPR.docx"

// Document is one loaded source file.
type Document struct {
	Filename     string
	Jurisdiction string
	LawName      string
	Text         string
}

// Loader resolves and reads the legal-text documents of a jurisdiction.
type Loader struct {
	dir     string
	catalog *model.Catalog
}

// NewLoader creates a Loader over the given knowledge directory.
func NewLoader(dir string, catalog *model.Catalog) *Loader {
	return &Loader{dir: dir, catalog: catalog}
}

// LoadCorpus loads every document belonging to the jurisdiction and
// concatenates them into one delimited text blob. An empty string means no
// documents were found (or the jurisdiction is unknown); callers must treat
// that as a not-found condition and never forward an empty corpus to the
// model. Individual unreadable files are logged and skipped.
func (l *Loader) LoadCorpus(jurisdiction string) string {
	docs := l.LoadDocuments(jurisdiction)
	if len(docs) == 0 {
		return ""
	}

	var b strings.Builder
	for _, d := range docs {
		b.WriteString(SectionDelimiter)
		b.WriteByte('\n')
		b.WriteString(d.Filename)
		b.WriteByte('\n')
		fmt.Fprintf(&b, "=== %s - %s ===\n", d.Jurisdiction, d.LawName)
		b.WriteByte('\n')
		b.WriteString(d.Text)
		b.WriteByte('\n')
	}
	return b.String()
}

// LoadDocuments returns the jurisdiction's documents in deterministic
// (filename-sorted) order, with the shared GDPR document appended for EU
// members when present and not already matched.
func (l *Loader) LoadDocuments(jurisdiction string) []Document {
	if !l.catalog.ValidJurisdiction(jurisdiction) {
		return nil
	}

	paths := l.matchFiles(jurisdiction)
	if len(paths) == 0 {
		// Older deployments kept a single "{jurisdiction}.txt" file.
		legacy := filepath.Join(l.dir, jurisdiction+".txt")
		if _, err := os.Stat(legacy); err == nil {
			paths = []string{legacy}
		}
	}

	var docs []Document
	for _, path := range paths {
		doc, err := l.readDocument(jurisdiction, path)
		if err != nil {
			zap.L().Warn("skipping unreadable document",
				zap.String("file", filepath.Base(path)),
				zap.Error(err),
			)
			continue
		}
		docs = append(docs, doc)
	}
	return docs
}

// matchFiles globs "{jurisdiction}_*.txt" and "{jurisdiction}_*.docx",
// appending the shared GDPR file for EU members.
func (l *Loader) matchFiles(jurisdiction string) []string {
	var paths []string
	for _, ext := range []string{".txt", ".docx"} {
		matches, err := filepath.Glob(filepath.Join(l.dir, jurisdiction+"_*"+ext))
		if err != nil {
			continue
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	if l.catalog.IsEUMember(jurisdiction) {
		gdpr := filepath.Join(l.dir, gdprFilename)
		if _, err := os.Stat(gdpr); err == nil && !containsPath(paths, gdpr) {
			paths = append(paths, gdpr)
		}
	}
	return paths
}

func containsPath(paths []string, p string) bool {
	for _, existing := range paths {
		if existing == p {
			return true
		}
	}
	return false
}

func (l *Loader) readDocument(jurisdiction, path string) (Document, error) {
	filename := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(filename))

	var text string
	var err error
	switch ext {
	case ".txt":
		text, err = readTextFile(path)
	case ".docx":
		text, err = ReadDocxText(path)
	default:
		err = eris.Errorf("knowledge: unsupported extension %q", ext)
	}
	if err != nil {
		return Document{}, err
	}

	return Document{
		Filename:     filename,
		Jurisdiction: jurisdiction,
		LawName:      lawName(filename, jurisdiction),
		Text:         text,
	}, nil
}

// lawName strips the jurisdiction prefix and file extension from a filename.
// The GDPR file keeps its own prefix so its law name stays "欧盟 - GDPR"
// style rather than being misattributed to the member state.
func lawName(filename, jurisdiction string) string {
	name := strings.TrimSuffix(filename, filepath.Ext(filename))
	if rest, ok := strings.CutPrefix(name, jurisdiction+"_"); ok {
		return rest
	}
	if name == jurisdiction {
		return "法律法规"
	}
	return name
}

// readTextFile decodes a plain-text file as UTF-8, falling back to GBK for
// legacy regional encodings.
func readTextFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", eris.Wrap(err, "knowledge: read file")
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, _, err := transform.Bytes(simplifiedchinese.GBK.NewDecoder(), raw)
	if err != nil {
		return "", eris.Wrap(err, "knowledge: decode gbk")
	}
	return string(decoded), nil
}
