package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	logx "github.com/headhunter-core/server/pkg/logger"
)

// chunkSize is the target rune length per ingested chunk. Chunks split on
// blank lines first, so most end up shorter.
const chunkSize = 1200

// IngestDir walks a category-named subtree (root/<category>/*.{txt,md,pdf})
// and loads every supported file into the matching collection. Files outside
// a known category directory are skipped.
func (x *Index) IngestDir(ctx context.Context, root string) (int, error) {
	total := 0
	for _, category := range Categories {
		dir := filepath.Join(root, category)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return total, fmt.Errorf("read dir %s: %w", dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			n, err := x.IngestFile(ctx, category, path)
			if err != nil {
				return total, err
			}
			total += n
		}
	}
	logx.Info().Int("documents", total).Str("root", root).Msg("knowledge ingest completed")
	return total, nil
}

// IngestFile loads one file into the given category and returns the number of
// chunks stored.
func (x *Index) IngestFile(ctx context.Context, category, path string) (int, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	case ".pdf":
		text, err = extractPDFText(path)
	default:
		logx.Warn().Str("path", path).Msg("skipping unsupported knowledge file")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	chunks := splitChunks(text)
	docs := make([]Document, 0, len(chunks))
	source := filepath.Base(path)
	for i, chunk := range chunks {
		docs = append(docs, Document{
			ID:       uuid.NewString(),
			Category: category,
			Content:  chunk,
			Metadata: map[string]string{"source": source, "chunk": fmt.Sprintf("%d", i)},
		})
	}
	if err := x.Add(ctx, docs...); err != nil {
		return 0, err
	}
	return len(docs), nil
}

func extractPDFText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	reader := bytes.NewReader(b)
	r, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for pageIndex := 1; pageIndex <= r.NumPage(); pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}
		rows, _ := page.GetTextByRow()
		for _, row := range rows {
			for _, word := range row.Content {
				sb.WriteString(word.S)
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String(), nil
}

// splitChunks breaks text on blank lines and merges paragraphs up to
// chunkSize runes. Whitespace-only input yields no chunks.
func splitChunks(text string) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var (
		chunks  []string
		current strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(p)) > chunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}
	flush()
	return chunks
}
