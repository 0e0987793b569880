package index

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LoadPDFDocuments reads every *.pdf file under dataDir and returns one Page
// per PDF page with extracted plain text. A missing directory is not an
// error; it just yields no pages.
func LoadPDFDocuments(dataDir string) ([]Page, error) {
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		log.Printf("[index] directory %s does not exist", dataDir)
		return nil, nil
	}

	paths, err := filepath.Glob(filepath.Join(dataDir, "*.pdf"))
	if err != nil {
		return nil, fmt.Errorf("failed to list pdf files in %s: %w", dataDir, err)
	}
	log.Printf("[index] found %d pdf files in %s", len(paths), dataDir)

	var pages []Page
	for _, path := range paths {
		loaded, err := loadPDF(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
		pages = append(pages, loaded...)
		log.Printf("[index] loaded %s (%d pages)", filepath.Base(path), len(loaded))
	}
	return pages, nil
}

func loadPDF(path string) ([]Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []Page
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			// Skip pages the extractor cannot handle; scanned pages
			// commonly have no text layer.
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, Page{Source: path, Page: i, Text: text})
	}
	return pages, nil
}
