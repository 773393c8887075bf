package knowledge

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	DefaultChunkSize = 500
	DefaultOverlap   = 50
)

// Chunker splits file text into overlapping line ranges.
type Chunker struct {
	// Size is the character count at which a chunk is closed.
	Size int
	// Overlap sets how much of a closed chunk is repeated at the start of
	// the next, as a share of Size, measured in lines.
	Overlap int
}

func NewChunker() *Chunker {
	return &Chunker{Size: DefaultChunkSize, Overlap: DefaultOverlap}
}

// Split accumulates lines until their character count reaches Size, emits a
// chunk, and carries the last max(1, lines*Overlap/Size) lines forward. The
// remaining lines form a final chunk when they add anything new.
func (c *Chunker) Split(path, text string) []Chunk {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil
	}

	var chunks []Chunk
	var cur []string
	length, start, fresh := 0, 1, 0

	for i, line := range lines {
		cur = append(cur, line)
		length += utf8.RuneCountInString(line)
		fresh++

		if length < c.Size {
			continue
		}
		end := i + 1
		chunks = append(chunks, c.chunk(path, cur, start, end, len(chunks)))

		keep := len(cur) * c.Overlap / c.Size
		if keep < 1 {
			keep = 1
		}
		cur = append([]string(nil), cur[len(cur)-keep:]...)
		start = end - keep + 1
		length = 0
		for _, l := range cur {
			length += utf8.RuneCountInString(l)
		}
		fresh = 0
	}

	if fresh > 0 {
		chunks = append(chunks, c.chunk(path, cur, start, len(lines), len(chunks)))
	}
	return chunks
}

func (c *Chunker) chunk(path string, lines []string, start, end, seq int) Chunk {
	return Chunk{
		ID:        ChunkID(path, start, seq),
		FilePath:  path,
		StartLine: start,
		EndLine:   end,
		Content:   strings.Join(lines, "\n"),
	}
}

// ChunkID is stable for a given file, start line and position.
func ChunkID(path string, start, seq int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("%s:%d:%d", path, start, seq))).String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
