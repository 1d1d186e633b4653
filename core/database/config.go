package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Config holds database connection settings.
// URL, when set, wins over the discrete fields.
type Config struct {
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// WaitSeconds bounds how long migrations wait for the server to accept connections.
	WaitSeconds int `yaml:"wait_seconds" envconfig:"DB_WAIT_SECONDS"`
}

// Enabled reports whether any connection target is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != "" || strings.TrimSpace(c.Host) != ""
}

// DSN returns a postgres:// connection URL usable by both lib/pq and golang-migrate.
func (c Config) DSN() string {
	if u := strings.TrimSpace(c.URL); u != "" {
		return u
	}
	port := c.Port
	if port == "" {
		port = "5432"
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, port),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	return u.String()
}

// Target describes the connection for logs without credentials.
func (c Config) Target() (host, port, name string) {
	if u, err := url.Parse(strings.TrimSpace(c.URL)); err == nil && u.Host != "" {
		return u.Hostname(), u.Port(), strings.TrimPrefix(u.Path, "/")
	}
	return c.Host, c.Port, c.Name
}
