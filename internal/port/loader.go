package port

import "contractqa/internal/domain"

// DocumentLoader reads a single source document into memory.
type DocumentLoader interface {
	Load(path string) (domain.Document, error)
}
