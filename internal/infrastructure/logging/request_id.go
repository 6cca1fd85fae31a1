package logging

import (
	"strings"

	"github.com/google/uuid"
)

// RequestIDGenerator produces identifiers for inbound requests.
type RequestIDGenerator struct {
	prefix string
}

func NewRequestIDGenerator(prefix string) *RequestIDGenerator {
	if prefix == "" {
		prefix = "req"
	}
	return &RequestIDGenerator{prefix: prefix}
}

// Generate returns "{prefix}_{uuid}".
func (g *RequestIDGenerator) Generate() string {
	return g.prefix + "_" + uuid.NewString()
}

// GenerateShort keeps only the first uuid group.
func (g *RequestIDGenerator) GenerateShort() string {
	id := uuid.NewString()
	if idx := strings.IndexByte(id, '-'); idx > 0 {
		id = id[:idx]
	}
	return g.prefix + "_" + id
}

var defaultGenerator = NewRequestIDGenerator("req")

func GenerateRequestID() string {
	return defaultGenerator.Generate()
}

func GenerateShortRequestID() string {
	return defaultGenerator.GenerateShort()
}
