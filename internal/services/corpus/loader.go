package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
)

// LoadFile reads a corpus document and returns its plain text. The format is
// chosen by extension: txt and md are read directly, html is reduced to
// markdown, pdf goes through text extraction.
func LoadFile(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	case ".html", ".htm":
		return loadHTML(path)
	case ".pdf":
		return extractPDFText(path)
	default:
		return "", fmt.Errorf("unsupported corpus format: %s", filepath.Ext(path))
	}
}

// loadHTML strips boilerplate markup and converts the remaining document
// body to markdown.
func loadHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML %s: %w", path, err)
	}

	// Drop non-content elements before conversion
	doc.Find("script, style, nav, header, footer, aside").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		body = doc.Selection
	}
	html, err := body.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize HTML %s: %w", path, err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to markdown %s: %w", path, err)
	}

	return markdown, nil
}
