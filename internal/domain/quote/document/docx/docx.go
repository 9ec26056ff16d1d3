package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"tarificateur/go_backend/internal/domain/quote"
	"tarificateur/go_backend/internal/domain/quote/document"
)

// Generator fills the Word template matching the quote's guarantees. When
// the template directory has no such file the built-in layout is used.
type Generator struct {
	TemplateDir string
	log         *zap.Logger
}

func New(templateDir string, log *zap.Logger) *Generator {
	return &Generator{TemplateDir: templateDir, log: log}
}

func (g *Generator) Generate(q quote.Quote) ([]byte, error) {
	name, known := document.TemplateName(q)
	if !known {
		g.log.Warn("unknown guarantee, using default template",
			zap.Int64("quote_id", q.ID), zap.String("garantie", string(q.Guarantee)))
	}

	tpl, err := g.template(name, q)
	if err != nil {
		return nil, err
	}

	values := document.Values(q)
	repl := make(map[string]string, len(values))
	for k, v := range values {
		repl[document.Placeholder(k)] = v
	}
	return Render(tpl, repl)
}

func (g *Generator) template(name string, q quote.Quote) ([]byte, error) {
	if g.TemplateDir != "" {
		data, err := os.ReadFile(filepath.Join(g.TemplateDir, name))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		g.log.Debug("template not found, using built-in layout", zap.String("template", name))
	}
	return Builtin(q)
}

// Word splits typed text into several runs; joining adjacent plain runs lets
// a placeholder typed in one go be found again.
var runBoundary = regexp.MustCompile(`</w:t></w:r><w:r>(?:<w:rPr>(?:<[^>]*/>)*</w:rPr>)?<w:t(?: xml:space="preserve")?>`)

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// Render replaces placeholders in the body, headers and footers of a .docx
// archive and returns the new archive.
func Render(docx []byte, replacements map[string]string) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}

	repl := replacer(replacements)

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for _, file := range zr.File {
		w, err := zw.Create(file.Name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", file.Name, err)
		}
		r, err := file.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file.Name, err)
		}
		if isTextPart(file.Name) {
			err = rewritePart(w, r, repl)
		} else {
			_, err = io.Copy(w, r)
		}
		r.Close()
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", file.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close docx: %w", err)
	}
	return out.Bytes(), nil
}

func isTextPart(name string) bool {
	return name == "word/document.xml" ||
		strings.HasPrefix(name, "word/header") ||
		strings.HasPrefix(name, "word/footer")
}

// replacer substitutes every placeholder in one pass, so a value holding
// placeholder text is written as is.
func replacer(replacements map[string]string) *strings.Replacer {
	keys := make([]string, 0, len(replacements))
	for k := range replacements {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, k, xmlEscaper.Replace(replacements[k]))
	}
	return strings.NewReplacer(pairs...)
}

func rewritePart(w io.Writer, r io.Reader, repl *strings.Replacer) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = repl.WriteString(w, runBoundary.ReplaceAllString(string(raw), ""))
	return err
}
