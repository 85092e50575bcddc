// Package knowledge holds the in-memory knowledge base: ingested document
// chunks and keyword search over them.
package knowledge

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"ai-support-agent-be/internal/pkg/logger"
)

// Chunk is one immutable unit of ingested knowledge.
type Chunk struct {
	Content    string `json:"content"`
	SourceName string `json:"source"`
	SourcePath string `json:"path"`
}

type IngestStats struct {
	Successful  int `json:"successful"`
	Failed      int `json:"failed"`
	TotalChunks int `json:"total_chunks"`
}

type Statistics struct {
	TotalChunks    int    `json:"total_chunks"`
	TotalDocuments int    `json:"total_documents"`
	Model          string `json:"model"`
}

var paragraphSplitter = regexp.MustCompile(`\n\n+`)

// Store keeps chunks in insertion order. Ingestion takes the write lock;
// searches run under read locks.
type Store struct {
	mu        sync.RWMutex
	chunks    []Chunk
	chunkSize int
	modelName string
	logger    logger.ILogger
}

func NewStore(chunkSize int, modelName string, log logger.ILogger) *Store {
	return &Store{
		chunkSize: chunkSize,
		modelName: modelName,
		logger:    log,
	}
}

// Ingest reads each path as UTF-8 text, splits it into chunks and appends
// them to the store. A file that cannot be read counts as failed and does
// not abort the batch. Repeated calls append; use Clear first to replace.
func (s *Store) Ingest(paths []string) IngestStats {
	stats := IngestStats{}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			stats.Failed++
			s.logger.Error("KnowledgeStore", "Failed to load "+path, map[string]interface{}{"error": err.Error()})
			continue
		}

		pieces := splitText(string(content), s.chunkSize)
		for _, piece := range pieces {
			s.chunks = append(s.chunks, Chunk{
				Content:    piece,
				SourceName: filepath.Base(path),
				SourcePath: path,
			})
		}

		stats.Successful++
		stats.TotalChunks += len(pieces)
		s.logger.Info("KnowledgeStore", "Loaded "+filepath.Base(path), map[string]interface{}{"chunks": len(pieces)})
	}

	s.logger.Info("KnowledgeStore", "Document ingestion complete", map[string]interface{}{
		"successful":   stats.Successful,
		"total_chunks": stats.TotalChunks,
	})

	return stats
}

// Clear drops all chunks.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = nil
}

// splitText accumulates trimmed paragraphs into chunks of roughly chunkSize
// characters. The configured overlap is intentionally not applied here:
// retrieval scoring is tuned against non-overlapping chunks.
func splitText(text string, chunkSize int) []string {
	paragraphs := paragraphSplitter.Split(text, -1)

	var chunks []string
	current := ""

	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		if len(current)+len(para) < chunkSize {
			current += para + "\n\n"
		} else {
			if current != "" {
				chunks = append(chunks, strings.TrimSpace(current))
			}
			current = para + "\n\n"
		}
	}

	if current != "" {
		chunks = append(chunks, strings.TrimSpace(current))
	}

	if len(chunks) == 0 {
		return []string{text}
	}
	return chunks
}

// Search scores every chunk by how many distinct query words appear in its
// lowercased content (substring containment) and returns at most topK
// matches, best first. The sort is stable, so ties keep insertion order.
// A query matching nothing returns an empty slice, not an error.
func (s *Store) Search(query string, topK int) []Chunk {
	queryWords := make(map[string]struct{})
	for _, word := range strings.Fields(strings.ToLower(query)) {
		queryWords[word] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scoredChunk struct {
		score int
		chunk Chunk
	}

	var scored []scoredChunk
	for _, chunk := range s.chunks {
		contentLower := strings.ToLower(chunk.Content)

		score := 0
		for word := range queryWords {
			if strings.Contains(contentLower, word) {
				score++
			}
		}

		if score > 0 {
			scored = append(scored, scoredChunk{score: score, chunk: chunk})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}

	results := make([]Chunk, len(scored))
	for i, sc := range scored {
		results[i] = sc.chunk
	}
	return results
}

// Statistics reports the current store contents for diagnostics.
func (s *Store) Statistics() Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]struct{})
	for _, chunk := range s.chunks {
		sources[chunk.SourceName] = struct{}{}
	}

	return Statistics{
		TotalChunks:    len(s.chunks),
		TotalDocuments: len(sources),
		Model:          s.modelName,
	}
}
