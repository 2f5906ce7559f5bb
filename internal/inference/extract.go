package inference

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// ErrUnsupportedFile is returned for uploads that no provider can read
// locally. Only plain text and HTML are supported.
var ErrUnsupportedFile = errors.New("only TXT and HTML files are supported")

// ExtractText pulls readable text out of an uploaded file based on its
// extension.
func ExtractText(fileName string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".txt", ".text":
		return strings.TrimSpace(string(data)), nil
	case ".html", ".htm":
		return extractHTMLText(data)
	default:
		return "", fmt.Errorf("%w (got %q)", ErrUnsupportedFile, fileName)
	}
}

// extractHTMLText walks the parsed document collecting text nodes, skipping
// script and style subtrees.
func extractHTMLText(data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				if sb.Len() > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return sb.String(), nil
}
