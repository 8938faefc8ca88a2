package vectordb

import (
	"fmt"
	"strconv"
)

// Chunk is one embedded segment of a property document, the unit of storage.
type Chunk struct {
	ID         string
	PropertyID string
	SourcePath string
	ChunkIndex int
	Text       string
	Vector     []float32
}

// ChunkID derives the deterministic identifier for a chunk from its source
// path and index. Re-ingesting an unchanged chunk therefore overwrites the
// stored entry instead of duplicating it.
func ChunkID(sourcePath string, chunkIndex int) string {
	return fmt.Sprintf("%s#%d", sourcePath, chunkIndex)
}

// Match pairs a stored chunk with its similarity score for one query.
type Match struct {
	ChunkID    string
	Score      float32
	Text       string
	SourcePath string
	ChunkIndex int
}

func parseChunkIndex(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
