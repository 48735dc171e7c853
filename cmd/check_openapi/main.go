package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type openAPIDoc struct {
	Paths      map[string]map[string]operation `yaml:"paths"`
	Components struct {
		Schemas map[string]schema `yaml:"schemas"`
	} `yaml:"components"`
}

type operation struct {
	Summary   string         `yaml:"summary"`
	Responses map[string]any `yaml:"responses"`
}

type schema struct {
	Type       string            `yaml:"type"`
	Ref        string            `yaml:"$ref"`
	Properties map[string]schema `yaml:"properties"`
	Required   []string          `yaml:"required"`
	Items      *schema           `yaml:"items"`
}

// servedRoutes lists every method and path the community server answers.
var servedRoutes = []string{
	"GET /healthz",
	"POST /api/auth/register",
	"POST /api/auth/login",
	"POST /api/auth/admin-login",
	"POST /api/auth/logout",
	"GET /api/users/me",
	"GET /api/users/online-count",
	"PUT /api/users/profile-picture",
	"GET /api/chat/messages",
	"POST /api/chat/messages",
	"GET /api/announcements",
	"POST /api/announcements",
	"POST /api/uploads/images",
	"GET /api/uploads/images/{userID}/{file}",
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <openapi.yaml>\n", os.Args[0])
		os.Exit(2)
	}
	doc, err := loadDoc(os.Args[1])
	if err != nil {
		exitErr(err)
	}
	if err := check(doc); err != nil {
		exitErr(err)
	}
	fmt.Println("OpenAPI contract check passed.")
}

func check(doc openAPIDoc) error {
	errResp, err := getSchema(doc, "ErrorResponse")
	if err != nil {
		return err
	}
	if err := validateErrorResponse(errResp); err != nil {
		return err
	}
	user, err := getSchema(doc, "User")
	if err != nil {
		return err
	}
	if err := validateUser(user); err != nil {
		return err
	}
	return validateRoutes(doc)
}

func loadDoc(path string) (openAPIDoc, error) {
	var doc openAPIDoc
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

func getSchema(doc openAPIDoc, name string) (schema, error) {
	if doc.Components.Schemas == nil {
		return schema{}, errors.New("components.schemas missing")
	}
	s, ok := doc.Components.Schemas[name]
	if !ok {
		return schema{}, fmt.Errorf("schema %q missing", name)
	}
	return s, nil
}

func validateErrorResponse(s schema) error {
	if s.Type != "object" {
		return errors.New("ErrorResponse must be object")
	}
	if !makeSet(s.Required)["detail"] {
		return errors.New("ErrorResponse.required must include \"detail\"")
	}
	detail, ok := s.Properties["detail"]
	if !ok || detail.Type != "string" {
		return errors.New("ErrorResponse.detail must be string")
	}
	return nil
}

func validateUser(s schema) error {
	if s.Type != "object" {
		return errors.New("User must be object")
	}
	for name := range s.Properties {
		if strings.Contains(strings.ToLower(name), "password") {
			return fmt.Errorf("User must not expose %q", name)
		}
	}
	required := makeSet(s.Required)
	for _, field := range []string{"id", "username", "role", "online_status"} {
		if !required[field] {
			return fmt.Errorf("User.required must include %q", field)
		}
	}
	return nil
}

func validateRoutes(doc openAPIDoc) error {
	documented := make(map[string]bool)
	for path, ops := range doc.Paths {
		for method, op := range ops {
			if len(op.Responses) == 0 {
				return fmt.Errorf("%s %s has no responses", strings.ToUpper(method), path)
			}
			documented[strings.ToUpper(method)+" "+path] = true
		}
	}
	var missing []string
	for _, route := range servedRoutes {
		if !documented[route] {
			missing = append(missing, route)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("undocumented routes: %s", strings.Join(missing, ", "))
	}
	return nil
}

func makeSet(items []string) map[string]bool {
	out := make(map[string]bool, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out[item] = true
	}
	return out
}

func exitErr(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}
