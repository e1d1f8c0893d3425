package cli

import (
	"encoding/json"
	"fmt"
	"os"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case User:
		o.printUser(v)
	case AuthResult:
		o.printAuthResult(v)
	case TokenList:
		o.printTokenList(v)
	case GameLogin:
		o.printGameLogin(v)
	case MatchResult:
		fmt.Println(v.Body)
	case MissingResult:
		o.printMissing(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// User response type (matches API)
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AuthResult combines user and token
type AuthResult struct {
	User         User   `json:"user"`
	SessionToken string `json:"session_token"`
}

// GameToken is a game login as listed on the web
type GameToken struct {
	ID              string `json:"id"`
	NetworkLocation string `json:"network_location"`
	ClientVersion   string `json:"client_version"`
	Approved        bool   `json:"approved"`
	Used            bool   `json:"used"`
	IssuedAt        string `json:"issued_at"`
}

// TokenList response type
type TokenList struct {
	Tokens []GameToken `json:"tokens"`
}

// GameLogin is the result of signing in as the game
type GameLogin struct {
	Ticket     string `json:"ticket"`
	ServerName string `json:"server_name"`
}

// MatchResult holds the raw match response
type MatchResult struct {
	Body string `json:"body"`
}

// MissingResult lists resources still to upload
type MissingResult struct {
	Missing []string `json:"missing"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printUser(u User) {
	fmt.Printf("User: %s (%s)\n", u.Username, u.ID)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printUser(a.User)
	fmt.Printf("Token: %s\n", a.SessionToken)
}

func (o *Output) printTokenList(l TokenList) {
	if len(l.Tokens) == 0 {
		fmt.Println("No pending logins")
		return
	}
	fmt.Printf("Pending logins (%d):\n", len(l.Tokens))
	for _, t := range l.Tokens {
		fmt.Printf("  - %s from %s (%s) at %s\n", t.ID, t.NetworkLocation, t.ClientVersion, t.IssuedAt)
	}
}

func (o *Output) printGameLogin(g GameLogin) {
	fmt.Printf("Signed in to %s\n", g.ServerName)
	fmt.Printf("Ticket: %s\n", g.Ticket)
	fmt.Println("Approve this login on the website before using it.")
}

func (o *Output) printMissing(m MissingResult) {
	if len(m.Missing) == 0 {
		fmt.Println("All resources present")
		return
	}
	fmt.Printf("Missing (%d):\n", len(m.Missing))
	for _, h := range m.Missing {
		fmt.Printf("  - %s\n", h)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
}
