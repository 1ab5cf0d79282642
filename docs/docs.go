// Package docs holds the Swagger document served at /swagger/*any.
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
        "/health": {
            "get": {
                "description": "Check if the API is healthy",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check",
                "responses": {
                    "200": {
                        "description": "API is healthy",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        },
        "/live": {
            "get": {
                "description": "Check if the API is alive",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Liveness Check",
                "responses": {
                    "200": {
                        "description": "API is alive",
                        "schema": {"type": "object", "additionalProperties": true}
                    }
                }
            }
        },
        "/ready": {
            "get": {
                "description": "Check if the API and its store are ready to serve traffic",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check",
                "responses": {
                    "200": {
                        "description": "API is ready",
                        "schema": {"type": "object", "additionalProperties": true}
                    },
                    "503": {
                        "description": "Store unreachable",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    }
                }
            }
        },
        "/webhook": {
            "post": {
                "description": "Completes the webhook handshake (X-Hook-Secret) or verifies and processes a signed event delivery (X-Asana-Request-Signature).",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Webhook"],
                "summary": "Asana webhook endpoint",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Name of the ticket sequence",
                        "name": "counter_key",
                        "in": "query",
                        "required": true
                    },
                    {
                        "type": "string",
                        "description": "Ticket prefix inserted into task names",
                        "name": "prefix",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "200": {
                        "description": "Handshake completed or event processed",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    },
                    "400": {
                        "description": "Missing parameters, unknown request or invalid payload",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    },
                    "403": {
                        "description": "Invalid signature",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    },
                    "413": {
                        "description": "Request body too large",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    },
                    "429": {
                        "description": "Rate limit exceeded",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    },
                    "500": {
                        "description": "Secret could not be stored",
                        "schema": {"$ref": "#/definitions/response.Resp"}
                    }
                }
            }
        }
    },
    "definitions": {
        "response.Resp": {
            "type": "object",
            "properties": {
                "data": {},
                "error_code": {"type": "integer"},
                "errors": {},
                "message": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1",
	Host:             "localhost:8080",
	BasePath:         "",
	Schemes:          []string{"http"},
	Title:            "Asana Ticket Numbering API",
	Description:      "Numbers Asana tasks with a per-project ticket prefix when they are created or renamed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
