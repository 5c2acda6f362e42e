// spec.go — встроенный OpenAPI-контракт JSON API.
package generated

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var specYAML []byte

// GetSwagger разбирает и валидирует встроенный openapi.yaml.
func GetSwagger() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(specYAML)
	if err != nil {
		return nil, fmt.Errorf("разбор openapi.yaml: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("валидация openapi.yaml: %w", err)
	}
	return doc, nil
}

// SpecYAML возвращает исходный текст контракта (для /api/v1/openapi.yaml).
func SpecYAML() []byte {
	return specYAML
}
