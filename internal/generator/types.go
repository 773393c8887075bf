package generator

import (
	"semgraph/internal/extractor"
	"semgraph/internal/knowledge"
	"semgraph/internal/retrieval"
)

// FileReport is everything rendered for one file of a context report.
type FileReport struct {
	retrieval.FileContext
	Items []extractor.CodeItem
}

// fileHits groups ranked hits of one file in rank order.
type fileHits struct {
	path string
	hits []knowledge.Hit
}
