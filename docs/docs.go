// Package docs holds the Swagger document served by gin-swagger.
// Regenerate with `swag init -g cmd/main.go` after changing handler annotations.
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
        "/admin/questions": {
            "get": {
                "description": "Every question in ascending ID order. Answers are withheld; use the reveal endpoint.",
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) List the plate bank",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.QuestionSummary"}}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/questions/upload": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) Add a plate from an uploaded image",
                "parameters": [
                    {"type": "file", "description": "Plate image (jpg, jpeg or png)", "name": "image", "in": "formData", "required": true},
                    {"type": "string", "description": "Correct answer", "name": "correct_answer", "in": "formData", "required": true}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.QuestionResponse"}},
                    "400": {"description": "Missing file or answer, unsupported type", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Answer already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/questions/url": {
            "post": {
                "description": "The image is downloaded, checked to decode and stored as JPEG.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) Add a plate from a remote image URL",
                "parameters": [
                    {"description": "Image URL and correct answer", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.CreateFromURLRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/dto.QuestionResponse"}},
                    "400": {"description": "Invalid request body", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "409": {"description": "Answer already exists", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "422": {"description": "Image unreachable or not an image", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/questions/{id}": {
            "delete": {
                "description": "Removes the row, then its image file. A file that cannot be removed is reported in file_error.",
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) Delete a plate",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.DeleteResponse"}},
                    "400": {"description": "Invalid ID format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Question not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/questions/{id}/answer": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) Reveal the correct answer of a plate",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.AnswerResponse"}},
                    "400": {"description": "Invalid ID format", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Question not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/questions/{id}/suggest": {
            "post": {
                "description": "Returns the model's reading and whether it matches the stored answer (case-insensitive).",
                "produces": ["application/json"],
                "tags": ["Admin - Questions"],
                "summary": "(Admin) Ask Gemini to read a plate",
                "parameters": [{"type": "integer", "description": "Question ID", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.SuggestionResponse"}},
                    "404": {"description": "Question not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "Gemini not configured", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/admin/images/cleanup": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Admin - Images"],
                "summary": "(Admin) Remove image files no question references",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dto.CleanupReport"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.AnswerResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "correct_answer": {"type": "string"}}
        },
        "dto.CleanupFailure": {
            "type": "object",
            "properties": {"path": {"type": "string"}, "error": {"type": "string"}}
        },
        "dto.CleanupReport": {
            "type": "object",
            "properties": {
                "scanned": {"type": "integer"},
                "removed": {"type": "array", "items": {"type": "string"}},
                "failed": {"type": "array", "items": {"$ref": "#/definitions/dto.CleanupFailure"}}
            }
        },
        "dto.CreateFromURLRequest": {
            "type": "object",
            "required": ["correct_answer", "image_url"],
            "properties": {"image_url": {"type": "string"}, "correct_answer": {"type": "string"}}
        },
        "dto.DeleteResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "image_path": {"type": "string"},
                "file_removed": {"type": "boolean"},
                "file_error": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {"message": {"type": "string"}, "details": {"type": "array", "items": {"type": "string"}}}
        },
        "dto.QuestionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "image_path": {"type": "string"},
                "correct_answer": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "dto.QuestionSummary": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "image_path": {"type": "string"},
                "image_name": {"type": "string"},
                "image_exists": {"type": "boolean"},
                "created_at": {"type": "string"}
            }
        },
        "dto.SuggestionResponse": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "suggestion": {"type": "string"}, "matches": {"type": "boolean"}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Colour Vision Plate Bank Admin API",
	Description:      "Admin API for managing a bank of colour vision test plates and their answers.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
