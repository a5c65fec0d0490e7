package openapi

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// Generate builds the OpenAPI 3.1 document for the admin API. The
// surface is fixed, so the document is assembled programmatically rather
// than introspected.
func Generate(baseURL, cookieName string) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "Verdeck Admin API",
			Description: "Session-authenticated administration of configuration versions with an audited action log.",
			Version:     "1.0.0",
		},
		Servers: openapi3.Servers{
			{URL: baseURL},
		},
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	components.SecuritySchemes = openapi3.SecuritySchemes{}
	doc.Components = &components

	doc.Components.SecuritySchemes["cookieAuth"] = &openapi3.SecuritySchemeRef{
		Value: &openapi3.SecurityScheme{
			Type: "apiKey",
			In:   "cookie",
			Name: cookieName,
		},
	}
	doc.Security = openapi3.SecurityRequirements{
		{"cookieAuth": {}},
	}

	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
			},
		},
	}
	doc.Components.Schemas["Version"] = versionSchema()
	doc.Components.Schemas["AuditEntry"] = auditEntrySchema()

	doc.Paths = openapi3.NewPaths()
	addProbePaths(doc)
	addAuthPaths(doc)
	addVersionPaths(doc)
	addLogPaths(doc)

	return doc
}

func addProbePaths(doc *openapi3.T) {
	doc.Paths.Set("/health", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"system"},
			Summary:     "Liveness probe",
			OperationID: "health",
			Security:    &openapi3.SecurityRequirements{},
			Responses:   okResponses("Process is running", okSchema()),
		},
	})
	doc.Paths.Set("/readyz", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"system"},
			Summary:     "Readiness probe",
			OperationID: "ready",
			Security:    &openapi3.SecurityRequirements{},
			Responses:   okResponses("Store is reachable", okSchema()),
		},
	})
}

func addAuthPaths(doc *openapi3.T) {
	loginBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"username", "password"},
			Properties: openapi3.Schemas{
				"username": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, MinLength: 3, MaxLength: uint64Ptr(80)}},
				"password": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, MinLength: 8}},
			},
		},
	}
	loginResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"ok": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"user": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"id":       &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
							"username": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
					},
				},
			},
		},
	}

	doc.Paths.Set("/login", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"auth"},
			Summary:     "Authenticate and establish a session",
			OperationID: "login",
			Security:    &openapi3.SecurityRequirements{},
			RequestBody: jsonBody("Admin credentials", loginBody),
			Responses:   okResponses("Session established", loginResp),
		},
	})
	doc.Paths.Set("/logout", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"auth"},
			Summary:     "Destroy the current session",
			OperationID: "logout",
			Responses:   okResponses("Session destroyed", okSchema()),
		},
	})
}

func addVersionPaths(doc *openapi3.T) {
	versionRef := openapi3.NewSchemaRef("#/components/schemas/Version", nil)

	listResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"versions": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: versionRef,
					},
				},
			},
		},
	}
	versionResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"ok":      &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"version": versionRef,
			},
		},
	}
	createBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"name"},
			Properties: openapi3.Schemas{
				"name": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, MinLength: 1, MaxLength: uint64Ptr(200)}},
				"meta": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
			},
		},
	}
	idBody := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"id"},
			Properties: openapi3.Schemas{
				"id": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
			},
		},
	}
	testResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"ok":     &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"tested": versionRef,
				"note":   &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
			},
		},
	}

	doc.Paths.Set("/versions", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"versions"},
			Summary:     "List all versions, newest first",
			OperationID: "list_versions",
			Responses:   okResponses("Version list", listResp),
		},
	})
	doc.Paths.Set("/versions/create", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"versions"},
			Summary:     "Create a new, inactive version",
			OperationID: "create_version",
			RequestBody: jsonBody("Version to create", createBody),
			Responses:   okResponses("Created version", versionResp),
		},
	})
	doc.Paths.Set("/versions/delete", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"versions"},
			Summary:     "Delete a version (idempotent)",
			OperationID: "delete_version",
			RequestBody: jsonBody("Version id to delete", idBody),
			Responses:   okResponses("Deleted", okSchema()),
		},
	})
	doc.Paths.Set("/versions/activate", &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"versions"},
			Summary:     "Atomically make one version the single active one",
			OperationID: "activate_version",
			RequestBody: jsonBody("Version id to activate", idBody),
			Responses:   okResponses("Activated version", versionResp),
		},
	})
	doc.Paths.Set("/versions/test/{id}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"versions"},
			Summary:     "Run a simulated test against a version (stub)",
			OperationID: "test_version",
			Parameters: openapi3.Parameters{
				&openapi3.ParameterRef{
					Value: openapi3.NewPathParameter("id").
						WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}),
				},
			},
			Responses: okResponses("Simulated test result", testResp),
		},
	})
}

func addLogPaths(doc *openapi3.T) {
	logsResp := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"logs": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:  &openapi3.Types{"array"},
						Items: openapi3.NewSchemaRef("#/components/schemas/AuditEntry", nil),
					},
				},
			},
		},
	}

	doc.Paths.Set("/logs", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"logs"},
			Summary:     "List the most recent audit entries, newest first",
			OperationID: "list_logs",
			Responses:   okResponses("Audit entries", logsResp),
		},
	})
}

// ─── Schema helpers ─────────────────────────────────────────────────────────

func versionSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":         &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
				"name":       &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				"created_at": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"active":     &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
				"meta":       &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
			},
		},
	}
}

func auditEntrySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"id":          &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}},
				"user_id":     &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer", "null"}, Format: "int64"}},
				"action":      &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				"action_hash": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
				"created_at":  &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"}},
				"meta":        &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
			},
		},
	}
}

func okSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"ok": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}},
			},
		},
	}
}

func jsonBody(description string, schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Description: description,
			Required:    true,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// okResponses builds a Responses map with a success response and the
// standard error responses.
func okResponses(description string, schema *openapi3.SchemaRef) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	responses.Set("200", &openapi3.ResponseRef{
		Value: &openapi3.Response{
			Description: &successDesc,
			Content:     openapi3.NewContentWithJSONSchemaRef(schema),
		},
	})

	errorRef := openapi3.NewSchemaRef("#/components/schemas/ErrorResponse", nil)
	for code, desc := range map[string]string{
		"400": "Bad request",
		"401": "Unauthorized",
		"404": "Not found",
		"429": "Rate limited",
		"500": "Internal server error",
	} {
		d := desc
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &d,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}

	return responses
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
