package knowledge

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ai-support-agent-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, chunkSize int) *Store {
	t.Helper()
	return NewStore(chunkSize, "llama3.2", logger.NopLogger{})
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		chunkSize  int
		wantChunks []string
	}{
		{
			name:       "short document stays whole",
			text:       "Just one paragraph.",
			chunkSize:  800,
			wantChunks: []string{"Just one paragraph."},
		},
		{
			name:       "paragraphs merge below the threshold",
			text:       "First paragraph.\n\nSecond paragraph.",
			chunkSize:  800,
			wantChunks: []string{"First paragraph.\n\nSecond paragraph."},
		},
		{
			name:       "overflow starts a new chunk",
			text:       "aaaaaaaaaa\n\nbbbbbbbbbb\n\ncccccccccc",
			chunkSize:  15,
			wantChunks: []string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"},
		},
		{
			name:       "blank-heavy separators collapse",
			text:       "one\n\n\n\n\ntwo",
			chunkSize:  800,
			wantChunks: []string{"one\n\ntwo"},
		},
		{
			name:       "whitespace-only paragraphs are skipped",
			text:       "one\n\n   \n\ntwo",
			chunkSize:  800,
			wantChunks: []string{"one\n\ntwo"},
		},
		{
			name:       "whitespace-only document falls back to raw text",
			text:       "   ",
			chunkSize:  800,
			wantChunks: []string{"   "},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantChunks, splitText(tt.text, tt.chunkSize))
		})
	}
}

func TestSplitTextPreservesAllParagraphs(t *testing.T) {
	text := strings.Repeat("para one content here.\n\npara two content here.\n\n", 20)

	chunks := splitText(text, 100)
	joined := strings.Join(chunks, "\n\n")

	for _, para := range []string{"para one content here.", "para two content here."} {
		assert.Contains(t, joined, para)
	}

	// Every paragraph occurrence survives, none duplicated.
	assert.Equal(t, strings.Count(text, "content here."), strings.Count(joined, "content here."))
}

func TestIngestCountsFailuresWithoutAborting(t *testing.T) {
	dir := t.TempDir()
	good := writeDoc(t, dir, "faq.txt", "Q: What are your hours? A: 24/7.")

	store := newTestStore(t, 800)
	stats := store.Ingest([]string{good, filepath.Join(dir, "missing.txt"), good})

	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, stats.TotalChunks)

	// Re-ingestion appends.
	stats = store.Ingest([]string{good})
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 3, store.Statistics().TotalChunks)

	store.Clear()
	assert.Equal(t, 0, store.Statistics().TotalChunks)
}

func TestSearchRankingAndLimit(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, 800)
	store.Ingest([]string{
		writeDoc(t, dir, "a.txt", "shipping times vary by location"),
		writeDoc(t, dir, "b.txt", "shipping is free for defective items"),
		writeDoc(t, dir, "c.txt", "we accept credit cards"),
	})

	results := store.Search("shipping defective items", 10)
	require.Len(t, results, 2)

	// b.txt matches all three words, a.txt only one.
	assert.Equal(t, "b.txt", results[0].SourceName)
	assert.Equal(t, "a.txt", results[1].SourceName)

	// topK caps the result count.
	assert.Len(t, store.Search("shipping", 1), 1)
}

func TestSearchTieBreakKeepsInsertionOrder(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, 800)
	store.Ingest([]string{
		writeDoc(t, dir, "first.txt", "refund policy details"),
		writeDoc(t, dir, "second.txt", "refund request steps"),
		writeDoc(t, dir, "third.txt", "refund timelines"),
	})

	results := store.Search("refund", 3)
	require.Len(t, results, 3)
	assert.Equal(t, "first.txt", results[0].SourceName)
	assert.Equal(t, "second.txt", results[1].SourceName)
	assert.Equal(t, "third.txt", results[2].SourceName)
}

func TestSearchSubstringContainment(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, 800)
	store.Ingest([]string{
		writeDoc(t, dir, "doc.txt", "International shipping takes longer."),
	})

	// "ship" is embedded inside "shipping" and still counts.
	results := store.Search("SHIP", 3)
	require.Len(t, results, 1)
}

func TestSearchNoMatchReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, 800)
	store.Ingest([]string{
		writeDoc(t, dir, "doc.txt", "Q: What are your hours? A: 24/7."),
	})

	assert.Empty(t, store.Search("zzzq unrelated nonsense", 3))
}

func TestStatistics(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t, 20)
	store.Ingest([]string{
		writeDoc(t, dir, "a.txt", "alpha paragraph one\n\nalpha paragraph two"),
		writeDoc(t, dir, "b.txt", "beta"),
	})

	stats := store.Statistics()
	assert.Equal(t, 3, stats.TotalChunks)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, "llama3.2", stats.Model)
}
