// Package auth registers the OpenAPI document for the auth service with the
// swag runtime so it can be served from /swagger/.
package auth

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "contact": {
            "name": "Wayline Platform Team",
            "url": "https://github.com/wayline/fleet"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/auth/register": {
            "post": {
                "tags": ["Auth"],
                "summary": "Register a new account",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/UserResponse"}},
                    "400": {"description": "Malformed request or weak password", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "409": {"description": "Email already registered", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log in with email and password",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Invalid credentials or one-time code", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "403": {"description": "Account deactivated", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "423": {"description": "Account temporarily locked", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/refresh": {
            "post": {
                "tags": ["Auth"],
                "summary": "Exchange a refresh token for a new pair",
                "parameters": [
                    {"name": "request", "in": "body", "schema": {"$ref": "#/definitions/RefreshRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Session expired or compromised", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Log out",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "Session terminated"},
                    "401": {"description": "Invalid or missing access token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Who am I",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserResponse"}},
                    "401": {"description": "Invalid or missing access token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/oauth/callback": {
            "post": {
                "tags": ["Auth"],
                "summary": "Complete an OAuth login",
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OAuthCallbackRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenPair"}},
                    "401": {"description": "Identity rejected", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/totp/provision": {
            "post": {
                "tags": ["TOTP"],
                "summary": "Provision a TOTP secret",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TOTPProvisionResponse"}},
                    "401": {"description": "Invalid or missing access token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/totp/enable": {
            "post": {
                "tags": ["TOTP"],
                "summary": "Enable TOTP",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TOTPEnableRequest"}}
                ],
                "responses": {
                    "204": {"description": "TOTP enabled"},
                    "401": {"description": "Invalid code or access token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/v1/auth/totp/disable": {
            "post": {
                "tags": ["TOTP"],
                "summary": "Disable TOTP",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "TOTP disabled"},
                    "401": {"description": "Invalid code or access token", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/livez": {
            "get": {
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}}
            }
        },
        "/readyz": {
            "get": {
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}},
                    "503": {"description": "Service not ready", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "minLength": 8}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "otp_code": {"type": "string"}
            }
        },
        "RefreshRequest": {
            "type": "object",
            "properties": {"refresh_token": {"type": "string"}}
        },
        "OAuthCallbackRequest": {
            "type": "object",
            "required": ["provider", "external_id", "email"],
            "properties": {
                "provider": {"type": "string"},
                "external_id": {"type": "string"},
                "email": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "TOTPEnableRequest": {
            "type": "object",
            "required": ["secret", "code"],
            "properties": {
                "secret": {"type": "string"},
                "code": {"type": "string"}
            }
        },
        "TOTPProvisionResponse": {
            "type": "object",
            "properties": {
                "secret": {"type": "string"},
                "otpauth_url": {"type": "string"}
            }
        },
        "TokenPair": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "refresh_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "UserResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string"},
                "provider": {"type": "string"},
                "email_verified": {"type": "boolean"},
                "totp_enabled": {"type": "boolean"},
                "last_login_at": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"},
                "checks": {"type": "object"}
            }
        },
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "error_description": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "JWT access token. Format: \"Bearer {token}\"."
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "Wayline Fleet Auth API",
	Description:      "Authentication and session lifecycle for the Wayline fleet platform.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
