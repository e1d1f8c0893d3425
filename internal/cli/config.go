package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Credential file names inside the config directory
const (
	tokenFileName  = "token"
	ticketFileName = "ticket"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	Token     string
	Ticket    string
	Dir       string
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("LHCTL_SERVER", "http://localhost:10060"),
		Token:     os.Getenv("LHCTL_TOKEN"),
		Ticket:    os.Getenv("LHCTL_TICKET"),
		Dir:       getEnvOrDefault("LHCTL_DIR", defaultDir()),
		Output:    "text",
		Verbose:   false,
	}
}

// LoadCredentials fills the web token and game ticket from their files
// when they were not given explicitly
func (c *Config) LoadCredentials() error {
	var err error
	if c.Token == "" {
		if c.Token, err = c.readFile(tokenFileName); err != nil {
			return err
		}
	}
	if c.Ticket == "" {
		if c.Ticket, err = c.readFile(ticketFileName); err != nil {
			return err
		}
	}
	return nil
}

// SaveToken saves the web session token
func (c *Config) SaveToken(token string) error {
	c.Token = token
	return c.writeFile(tokenFileName, token)
}

// SaveTicket saves the game MM_AUTH ticket
func (c *Config) SaveTicket(ticket string) error {
	c.Ticket = ticket
	return c.writeFile(ticketFileName, ticket)
}

func (c *Config) readFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(c.Dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil // No saved credential is fine
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Config) writeFile(name, value string) error {
	if err := os.MkdirAll(c.Dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Dir, name), []byte(value), 0600)
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lhctl"
	}
	return filepath.Join(home, ".lhctl")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
