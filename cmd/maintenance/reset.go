package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func init() {
	registerCommand(&ResetTokensCommand{})
}

// ResetTokensCommand zeroes the lead token counters for one user's
// agents, typically at the start of a billing period.
type ResetTokensCommand struct{}

func (c *ResetTokensCommand) Name() string { return "reset-tokens" }

func (c *ResetTokensCommand) Description() string {
	return "Zero lead token counters for the user given with -user"
}

func (c *ResetTokensCommand) Run(ctx context.Context, env *Env) error {
	if env.UserID == "" {
		return fmt.Errorf("-user is required")
	}

	userID, err := uuid.Parse(env.UserID)
	if err != nil {
		return fmt.Errorf("invalid user id: %w", err)
	}

	affected, err := env.Leads.ResetTokens(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Printf("reset token counters on %d leads\n", affected)
	return nil
}
