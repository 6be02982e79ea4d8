package config

import "path/filepath"

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         string
	TemplatesDir string
	StaticDir    string
}

// LoadServerConfig loads server configuration from environment variables
func LoadServerConfig(getenv func(string) string) ServerConfig {
	port := getenv("PORT")
	if port == "" {
		port = "8080" // Default to port 8080
	}

	templatesDir := getenv("TEMPLATES_DIR")
	if templatesDir == "" {
		templatesDir = "templates"
	}

	staticDir := getenv("STATIC_DIR")
	if staticDir == "" {
		staticDir = "static"
	}

	return ServerConfig{
		Port:         port,
		TemplatesDir: templatesDir,
		StaticDir:    staticDir,
	}
}

// TemplatePath returns the path of a named template inside TemplatesDir
func (c ServerConfig) TemplatePath(name string) string {
	return filepath.Join(c.TemplatesDir, name)
}
