//go:build swagger

// Package docs registers the OpenAPI description of the mock completions API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/completions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Create a completion",
                "parameters": [
                    {
                        "description": "Completion request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/types.CompletionRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/types.CompletionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "415": {"description": "Unsupported Media Type", "schema": {"$ref": "#/definitions/types.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/types.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "types.CompletionRequest": {
            "type": "object",
            "properties": {
                "model": {"type": "string", "example": "./dist/TinyLlama-1.1B-Chat-MLC/"},
                "prompt": {"type": "string", "example": "What is the capital of France?"},
                "max_tokens": {"type": "integer", "example": 16},
                "temperature": {"type": "number", "example": 0.7},
                "top_p": {"type": "number", "example": 0.9},
                "seed": {"type": "integer", "example": 42}
            }
        },
        "types.CompletionChoice": {
            "type": "object",
            "properties": {
                "index": {"type": "integer"},
                "text": {"type": "string", "example": "Paris"},
                "finish_reason": {"type": "string", "example": "length"}
            }
        },
        "types.Usage": {
            "type": "object",
            "properties": {
                "prompt_tokens": {"type": "integer"},
                "completion_tokens": {"type": "integer"},
                "total_tokens": {"type": "integer"}
            }
        },
        "types.CompletionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "object": {"type": "string", "example": "text_completion"},
                "created": {"type": "integer"},
                "model": {"type": "string"},
                "choices": {"type": "array", "items": {"$ref": "#/definitions/types.CompletionChoice"}},
                "usage": {"$ref": "#/definitions/types.Usage"}
            }
        },
        "types.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "invalid JSON body"},
                "code": {"type": "integer", "example": 400}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "mlcprobe mock completions API",
	Description:      "Local OpenAI-compatible completions endpoint used by the mlcprobe smoke test.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
