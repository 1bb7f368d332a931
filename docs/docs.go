// Package docs registers the OpenAPI description served under /swagger
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
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/users": {
            "post": {"tags": ["users"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Invalid field"}, "409": {"description": "user_id, nickname or email already in use"}}}
        },
        "/users/check": {
            "get": {"tags": ["users"], "summary": "Check if a user id, nickname or email is still available",
                "parameters": [
                    {"type": "string", "name": "field", "in": "query", "required": true},
                    {"type": "string", "name": "value", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Invalid field"}}}
        },
        "/users/login": {
            "post": {"tags": ["users"], "summary": "Log in and receive a session token", "responses": {"200": {"description": "OK"}, "401": {"description": "Invalid credentials"}}}
        },
        "/users/password/reset": {
            "post": {"tags": ["users"], "summary": "Reset a forgotten password with an emailed code", "responses": {"200": {"description": "OK"}, "401": {"description": "Wrong code"}, "404": {"description": "No user with this email"}, "408": {"description": "Code expired"}}}
        },
        "/users/me": {
            "get": {"tags": ["users"], "summary": "Profile of the logged in user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["users"], "summary": "Update password, nickname or email", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "409": {"description": "Already in use"}}},
            "delete": {"tags": ["users"], "summary": "Delete the logged in account", "security": [{"BearerAuth": []}], "responses": {"204": {"description": "Deleted"}, "401": {"description": "Invalid credentials"}}}
        },
        "/users/me/avatar": {
            "put": {"tags": ["users"], "summary": "Upload a new avatar", "security": [{"BearerAuth": []}], "consumes": ["multipart/form-data"],
                "parameters": [{"type": "file", "name": "avatar", "in": "formData", "required": true}],
                "responses": {"200": {"description": "OK"}, "413": {"description": "Too large"}, "415": {"description": "Not an image"}, "503": {"description": "Storage disabled"}}}
        },
        "/users/{id}": {
            "get": {"tags": ["users"], "summary": "Public profile of a user", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/verify/send": {
            "post": {"tags": ["verify"], "summary": "Email a verification code", "responses": {"200": {"description": "OK"}, "500": {"description": "Mail could not be sent"}}}
        },
        "/verify": {
            "post": {"tags": ["verify"], "summary": "Check a verification code", "responses": {"200": {"description": "Success"}, "401": {"description": "Wrong code"}, "408": {"description": "Expired or never issued"}}}
        },
        "/friends": {
            "get": {"tags": ["friends"], "summary": "Accepted friends", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/friends/requests": {
            "get": {"tags": ["friends"], "summary": "Pending friend requests", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "direction", "in": "query", "enum": ["incoming", "outgoing"]}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/friends/blocked": {
            "get": {"tags": ["friends"], "summary": "Blocked relationships", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}}}
        },
        "/friends/{id}": {
            "post": {"tags": ["friends"], "summary": "Send a friend request", "security": [{"BearerAuth": []}],
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Request to self"}, "404": {"description": "User not found"}, "409": {"description": "Already requested"}}}
        },
        "/friends/{id}/accept": {
            "post": {"tags": ["friends"], "summary": "Accept a friend request", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Illegal transition"}}}
        },
        "/friends/{id}/reject": {
            "post": {"tags": ["friends"], "summary": "Reject a friend request", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Illegal transition"}}}
        },
        "/friends/{id}/cancel": {
            "post": {"tags": ["friends"], "summary": "Withdraw a friend request", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Illegal transition"}}}
        },
        "/friends/{id}/block": {
            "post": {"tags": ["friends"], "summary": "Block a user", "security": [{"BearerAuth": []}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}, "409": {"description": "Illegal transition"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "TDLS API",
	Description:      "Accounts, email verification and friends",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
