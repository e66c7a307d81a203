// Package docs описание API в формате Swagger 2.0 для gin-swagger.
// Шаблон поддерживается вручную вместе с аннотациями обработчиков.
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
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Проверка состояния",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "503": {"description": "Service Unavailable", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/api/blocking/runs": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blocking"],
                "summary": "Список прогонов",
                "parameters": [
                    {"type": "integer", "default": 100, "description": "Размер страницы", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Смещение", "name": "offset", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.RunListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Строит индекс по шинглам поля блокинга и оценивает пары внутри блоков",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["blocking"],
                "summary": "Запустить блокинг",
                "parameters": [
                    {"description": "Записи и параметры", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CreateRunRequest"}}
                ],
                "responses": {
                    "200": {"description": "Результат прогона", "schema": {"$ref": "#/definitions/handlers.CreateRunResponse"}},
                    "400": {"description": "Некорректные записи или параметры", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "413": {"description": "Слишком много записей", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "429": {"description": "Превышен лимит запросов", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/blocking/runs/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["blocking"],
                "summary": "Получить прогон",
                "parameters": [
                    {"type": "string", "description": "ID прогона", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/database.Run"}},
                    "404": {"description": "Прогон не найден", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["blocking"],
                "summary": "Удалить прогон",
                "parameters": [
                    {"type": "string", "description": "ID прогона", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "404": {"description": "Прогон не найден", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/blocking/runs/{id}/scores": {
            "get": {
                "produces": ["application/json", "text/csv"],
                "tags": ["blocking"],
                "summary": "Пары прогона",
                "parameters": [
                    {"type": "string", "description": "ID прогона", "name": "id", "in": "path", "required": true},
                    {"type": "integer", "default": 1000, "description": "Размер страницы", "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "description": "Смещение", "name": "offset", "in": "query"},
                    {"type": "string", "default": "json", "description": "json, csv или xlsx; файл без limit содержит все пары", "name": "format", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ScoreListResponse"}},
                    "404": {"description": "Прогон не найден", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/blocking/tokenize": {
            "post": {
                "description": "Очистка, разбиение по запятым и символьные n-граммы каждого токена",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["blocking"],
                "summary": "Разбить строку на шинглы",
                "parameters": [
                    {"description": "Текст и длина шингла", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TokenizeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TokenizeResponse"}},
                    "400": {"description": "Некорректная длина шингла", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/api/similarity/compare": {
            "post": {
                "description": "Нормализованная схожесть Левенштейна: 1 - dist / max(len)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["similarity"],
                "summary": "Сравнить две строки",
                "parameters": [
                    {"description": "Строки для сравнения", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.CompareRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.CompareResponse"}},
                    "400": {"description": "Некорректное тело запроса", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "blocking.CandidateScore": {
            "type": "object",
            "properties": {
                "id1": {"type": "string"},
                "id2": {"type": "string"},
                "key": {"type": "string"},
                "score": {"type": "number"}
            }
        },
        "blocking.Record": {
            "type": "object",
            "properties": {
                "authors": {"type": "string"},
                "id": {"type": "string"},
                "title": {"type": "string"},
                "venue": {"type": "string"}
            }
        },
        "blocking.SizeBucket": {
            "type": "object",
            "properties": {
                "blocks": {"type": "integer"},
                "max": {"type": "integer"},
                "min": {"type": "integer"}
            }
        },
        "blocking.Stats": {
            "type": "object",
            "properties": {
                "block_sizes": {"type": "array", "items": {"$ref": "#/definitions/blocking.SizeBucket"}},
                "candidate_pairs": {"type": "integer"},
                "distinct_shingles": {"type": "integer"},
                "largest_block": {"type": "integer"},
                "largest_block_key": {"type": "string"},
                "naive_pairs": {"type": "integer"},
                "records": {"type": "integer"},
                "reduction": {"type": "number"},
                "scored_blocks": {"type": "integer"},
                "singleton_blocks": {"type": "integer"}
            }
        },
        "database.Run": {
            "type": "object",
            "properties": {
                "block_field": {"type": "string"},
                "candidate_pairs": {"type": "integer"},
                "created_at": {"type": "string"},
                "distinct_shingles": {"type": "integer"},
                "duration_ns": {"type": "integer"},
                "id": {"type": "string"},
                "records": {"type": "integer"},
                "score_field": {"type": "string"},
                "shingle_length": {"type": "integer"},
                "sources": {"type": "array", "items": {"type": "string"}},
                "stats": {"$ref": "#/definitions/blocking.Stats"}
            }
        },
        "handlers.CompareRequest": {
            "type": "object",
            "properties": {
                "string1": {"type": "string"},
                "string2": {"type": "string"}
            }
        },
        "handlers.CompareResponse": {
            "type": "object",
            "properties": {
                "algorithm": {"type": "string"},
                "distance": {"type": "integer"},
                "similarity": {"type": "number"}
            }
        },
        "handlers.CreateRunRequest": {
            "type": "object",
            "required": ["records"],
            "properties": {
                "block_field": {"type": "string"},
                "persist": {"type": "boolean"},
                "precision": {"type": "integer"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/blocking.Record"}},
                "score_field": {"type": "string"},
                "shingle_length": {"type": "integer"},
                "stem_language": {"type": "string"}
            }
        },
        "handlers.CreateRunResponse": {
            "type": "object",
            "properties": {
                "duration_ms": {"type": "integer"},
                "run_id": {"type": "string"},
                "scores": {"type": "array", "items": {"$ref": "#/definitions/blocking.CandidateScore"}},
                "stats": {"$ref": "#/definitions/blocking.Stats"},
                "total": {"type": "integer"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "boolean"},
                "message": {"type": "string"},
                "request_id": {"type": "string"}
            }
        },
        "handlers.RunListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "runs": {"type": "array", "items": {"$ref": "#/definitions/database.Run"}}
            }
        },
        "handlers.ScoreListResponse": {
            "type": "object",
            "properties": {
                "limit": {"type": "integer"},
                "offset": {"type": "integer"},
                "run_id": {"type": "string"},
                "scores": {"type": "array", "items": {"$ref": "#/definitions/blocking.CandidateScore"}},
                "total": {"type": "integer"}
            }
        },
        "handlers.TokenizeRequest": {
            "type": "object",
            "properties": {
                "n": {"type": "integer"},
                "text": {"type": "string"}
            }
        },
        "handlers.TokenizeResponse": {
            "type": "object",
            "properties": {
                "count": {"type": "integer"},
                "n": {"type": "integer"},
                "shingles": {"type": "array", "items": {"type": "string"}},
                "tokens": {"type": "array", "items": {"type": "string"}}
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
	Title:            "Entity Blocking API",
	Description:      "Blocking-based candidate generation for entity resolution.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
