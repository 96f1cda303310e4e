package parsers

import "github.com/pipcheck/pipcheck/internal/models"

// Parser is the interface for manifest file parsers
type Parser interface {
	// CanParse returns true if this parser can handle the given filename
	CanParse(filename string) bool

	// Parse decodes the file content into a Document
	Parse(filepath string, content []byte) (*models.Document, error)
}

// GetAllParsers returns all available parsers
func GetAllParsers() []Parser {
	return []Parser{
		&PipfileParser{},
		&PipfileLockParser{},
	}
}
