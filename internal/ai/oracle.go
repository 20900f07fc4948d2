package ai

import (
	"context"

	"google.golang.org/genai"
)

// Oracle turns a natural-language prompt into a response that is expected to
// conform to the provided schema. Implementations only transport the request;
// conformance is checked by Contract.Decode.
type Oracle interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
}

// Ask sends the prompt with the contract schema and decodes the response into out.
func Ask(ctx context.Context, oracle Oracle, prompt string, contract *Contract, out any) error {
	raw, err := oracle.GenerateStructured(ctx, prompt, contract.Schema)
	if err != nil {
		return err
	}

	return contract.Decode(raw, out)
}
