package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"google.golang.org/genai"
)

type MockOracle struct {
	mock.Mock
}

func (m *MockOracle) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	args := m.Called(ctx, prompt, schema)
	return args.String(0), args.Error(1)
}

// SchemaWith matches schemas that declare the given top-level property.
func SchemaWith(property string) interface{} {
	return mock.MatchedBy(func(schema *genai.Schema) bool {
		if schema == nil {
			return false
		}
		_, ok := schema.Properties[property]
		return ok
	})
}
