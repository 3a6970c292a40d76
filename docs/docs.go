package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/translate": {
            "get": {
                "description": "Streams initial translation, reflection and improved translation with stage markers.",
                "produces": ["text/event-stream", "text/plain"],
                "tags": ["translate"],
                "summary": "Translate text",
                "parameters": [
                    {"type": "string", "name": "text", "in": "query", "required": true},
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "string", "name": "target", "in": "query"},
                    {"type": "string", "name": "country", "in": "query"},
                    {"type": "string", "name": "llm", "in": "query"},
                    {"type": "string", "name": "model", "in": "query"},
                    {"type": "string", "name": "format", "in": "query", "enum": ["sse", "text"]}
                ],
                "responses": {
                    "200": {"description": "stream"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handler.errorResponse"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["text/event-stream", "text/plain"],
                "tags": ["translate"],
                "summary": "Translate text",
                "responses": {"200": {"description": "stream"}}
            }
        },
        "/complete": {
            "get": {
                "produces": ["text/event-stream", "text/plain"],
                "tags": ["translate"],
                "summary": "Free-form completion",
                "parameters": [
                    {"type": "string", "name": "prompt", "in": "query"},
                    {"type": "string", "name": "system", "in": "query"},
                    {"type": "string", "name": "llm", "in": "query"},
                    {"type": "string", "name": "model", "in": "query"}
                ],
                "responses": {"200": {"description": "stream"}}
            }
        },
        "/translations": {
            "get": {
                "produces": ["application/json"],
                "tags": ["translations"],
                "summary": "List translations",
                "parameters": [
                    {"type": "string", "name": "source", "in": "query"},
                    {"type": "string", "name": "target", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"},
                    {"type": "integer", "name": "offset", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["translations"],
                "summary": "Clear translation cache",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.deletedCountResponse"}}}
            }
        },
        "/translations/{id}": {
            "get": {
                "tags": ["translations"],
                "summary": "Get translation",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}
            },
            "delete": {
                "tags": ["translations"],
                "summary": "Delete translation",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}
            }
        },
        "/languages": {
            "get": {"tags": ["meta"], "summary": "List languages", "responses": {"200": {"description": "OK"}}}
        },
        "/languages/resolve": {
            "get": {
                "tags": ["meta"],
                "summary": "Resolve language",
                "parameters": [{"type": "string", "name": "name", "in": "query", "required": true}],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.errorResponse"}}}
            }
        },
        "/providers": {
            "get": {"tags": ["meta"], "summary": "List providers", "responses": {"200": {"description": "OK"}}}
        },
        "/settings/ai": {
            "get": {"tags": ["settings"], "summary": "Get AI settings", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["settings"], "summary": "Update AI settings", "responses": {"200": {"description": "OK"}}}
        },
        "/settings/ai/test": {
            "post": {"tags": ["settings"], "summary": "Test AI connection", "responses": {"200": {"description": "OK"}}}
        },
        "/settings/network": {
            "get": {"tags": ["settings"], "summary": "Get network settings", "responses": {"200": {"description": "OK"}}},
            "put": {"tags": ["settings"], "summary": "Update network settings", "responses": {"200": {"description": "OK"}}}
        },
        "/settings/network/test": {
            "post": {"tags": ["settings"], "summary": "Test network proxy", "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "handler.errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handler.deletedCountResponse": {
            "type": "object",
            "properties": {"deleted": {"type": "integer"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Translation Agent API",
	Description:      "Reflective translation relay: translate, critique and refine over streamed LLM output.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
