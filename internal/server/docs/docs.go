// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "Trusted Tools",
            "url": "https://ghostjobs.trusted-tools.com"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness check",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/model.HealthResponse"}
                    }
                }
            }
        },
        "/api/analyze": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analyze"],
                "summary": "Score a job posting URL",
                "parameters": [
                    {
                        "description": "Posting to analyze",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/model.AnalyzeRequest"}
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/model.AnalyzeResponse"}
                    },
                    "400": {
                        "description": "Bad Request",
                        "schema": {"$ref": "#/definitions/model.ErrorResponse"}
                    },
                    "500": {
                        "description": "Internal Server Error",
                        "schema": {"$ref": "#/definitions/model.ErrorResponse"}
                    }
                }
            }
        },
        "/ws/analyze": {
            "get": {
                "tags": ["analyze"],
                "summary": "Stream an analysis as reveal events over a WebSocket",
                "parameters": [
                    {
                        "type": "string",
                        "description": "Posting URL",
                        "name": "url",
                        "in": "query",
                        "required": true
                    }
                ],
                "responses": {
                    "101": {
                        "description": "Switching Protocols",
                        "schema": {"$ref": "#/definitions/server.AnalyzeEvent"}
                    }
                }
            }
        },
        "/sitemap.xml": {
            "get": {
                "produces": ["application/xml"],
                "tags": ["site"],
                "summary": "Site map of the landing page and blog",
                "responses": {
                    "200": {"description": "OK"},
                    "503": {
                        "description": "Service Unavailable",
                        "schema": {"$ref": "#/definitions/model.ErrorResponse"}
                    }
                }
            }
        }
    },
    "definitions": {
        "model.AnalyzeRequest": {
            "type": "object",
            "properties": {
                "url": {"type": "string", "example": "https://jobs.example.com/postings/123"},
                "mode": {"type": "string", "example": "quick"},
                "jobDescription": {"type": "string"},
                "postingDate": {"type": "string", "example": "2026-09-01"},
                "accessCode": {"type": "string"}
            }
        },
        "model.AnalyzeResponse": {
            "type": "object",
            "properties": {
                "score": {"type": "integer", "example": 85},
                "signals": {"$ref": "#/definitions/model.Signals"}
            }
        },
        "model.Signals": {
            "type": "object",
            "properties": {
                "stale": {"$ref": "#/definitions/model.Signal"},
                "weak": {"$ref": "#/definitions/model.Signal"},
                "inactivity": {"$ref": "#/definitions/model.Signal"}
            }
        },
        "model.Signal": {
            "type": "object",
            "properties": {
                "result": {"type": "boolean"},
                "delay": {"type": "integer", "example": 1000},
                "info": {"type": "string", "example": "12 days old"}
            }
        },
        "model.HealthResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean", "example": true}
            }
        },
        "model.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Invalid URL"}
            }
        },
        "server.AnalyzeEvent": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "signal"},
                "url": {"type": "string"},
                "title": {"type": "string"},
                "name": {"type": "string", "example": "stale"},
                "signal": {"$ref": "#/definitions/model.Signal"},
                "score": {"type": "integer", "example": 85},
                "label": {"type": "string", "example": "Likely Active"},
                "error": {"type": "string"},
                "state": {"$ref": "#/definitions/reveal.State"}
            }
        },
        "reveal.State": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "running"},
                "score": {"type": "integer", "example": 85},
                "signals": {
                    "type": "object",
                    "additionalProperties": {"type": "string", "example": "complete"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Ghost Job Checker API",
	Description:      "Scores job posting URLs by the age of their Last-Modified header.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
