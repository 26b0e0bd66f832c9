package swagger

import _ "embed"

// OpenAPI contains the embedded OpenAPI description of the roster backend.
//
//go:embed openapi.yaml
var OpenAPI []byte
