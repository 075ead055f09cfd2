// Package docs holds the OpenAPI description served under /swagger.
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
        "/accounts": {
            "post": {
                "description": "Creates the identity account and the student. Either both exist afterwards or neither does.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Register a user",
                "parameters": [
                    {
                        "description": "Registration request",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.RegisterUserRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.RegisterUserResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "504": {"description": "Gateway Timeout", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/accounts/login": {
            "post": {
                "description": "Exchanges credentials for an access token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["accounts"],
                "summary": "Log in",
                "parameters": [
                    {
                        "description": "Credentials",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.LoginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.LoginResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        },
        "/courses/{id}/enrollments": {
            "post": {
                "description": "Charges the stored course price and enrolls the student",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["enrollments"],
                "summary": "Buy a course",
                "parameters": [
                    {"type": "string", "description": "Course ID", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Card details",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.EnrollRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/models.Response"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/models.ErrorResponse"}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/models.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/models.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "models.EnrollRequest": {
            "type": "object",
            "properties": {
                "cardCvv": {"type": "string", "example": "123"},
                "cardExpirationDate": {"type": "string", "example": "12/29"},
                "cardName": {"type": "string", "example": "ANA SOUZA"},
                "cardNumber": {"type": "string", "example": "4532015112830366"},
                "studentId": {"type": "string", "example": "0b7c9a2e-6f0e-4c55-9d53-4b1f0a1d7e21"}
            }
        },
        "models.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "user name already registered"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "required": ["password", "userName"],
            "properties": {
                "password": {"type": "string", "example": "s3cret-pass"},
                "userName": {"type": "string", "example": "ana@example.com"}
            }
        },
        "models.LoginResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"}
            }
        },
        "models.RegisterUserRequest": {
            "type": "object",
            "required": ["dateOfBirth", "firstName", "lastName", "password", "userName"],
            "properties": {
                "dateOfBirth": {"type": "string", "example": "1999-04-12T00:00:00Z"},
                "firstName": {"type": "string", "example": "Ana"},
                "isAdmin": {"type": "boolean"},
                "lastName": {"type": "string", "example": "Souza"},
                "password": {"type": "string", "minLength": 8, "example": "s3cret-pass"},
                "userName": {"type": "string", "example": "ana@example.com"}
            }
        },
        "models.RegisterUserResponse": {
            "type": "object",
            "properties": {
                "accessToken": {"type": "string"},
                "id": {"type": "string"},
                "userName": {"type": "string"}
            }
        },
        "models.Response": {
            "type": "object",
            "properties": {
                "errors": {"type": "array", "items": {"$ref": "#/definitions/models.ResponseError"}},
                "valid": {"type": "boolean"}
            }
        },
        "models.ResponseError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
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
	Title:            "CourseHub API",
	Description:      "Registration and enrollment entry points of the course platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
