// Package main provides the maintenance command for operator tasks:
// reconciling vendor conversations, repairing legacy data, and auditing
// cross-table consistency. Commands self-register and run one at a time.
package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/iautomae/platform/internal/agents"
	"github.com/iautomae/platform/internal/config"
	"github.com/iautomae/platform/internal/elevenlabs"
	"github.com/iautomae/platform/internal/leads"
)

// Env carries the shared dependencies commands operate on.
type Env struct {
	DB     *sql.DB
	Logger *slog.Logger
	Config *config.Config
	Agents agents.System
	Leads  leads.System
	Vendor *elevenlabs.Client

	// Repair switches report-only commands into write mode.
	Repair bool

	// UserID scopes user-targeted commands.
	UserID string
}

// Command defines the interface for maintenance commands.
type Command interface {
	// Name returns the unique identifier for this command.
	Name() string

	// Description returns a human-readable description of what this command does.
	Description() string

	// Run executes the command against the shared environment.
	Run(ctx context.Context, env *Env) error
}

var commands = map[string]Command{}

// registerCommand adds a command to the global registry.
// Commands self-register via init() functions.
func registerCommand(c Command) {
	commands[c.Name()] = c
}

// getCommand retrieves a command by name from the registry.
func getCommand(name string) (Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// listCommands returns all registered commands.
func listCommands() []Command {
	result := make([]Command, 0, len(commands))
	for _, c := range commands {
		result = append(result, c)
	}
	return result
}
