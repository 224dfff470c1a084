package main

import (
	"context"
	"fmt"
)

func init() {
	registerCommand(&AuditCommand{})
}

// AuditCommand reports cross-table consistency: counts per table,
// agents owned by users with no profile, and unlinked agents that have
// somehow captured leads.
type AuditCommand struct{}

func (c *AuditCommand) Name() string { return "audit" }

func (c *AuditCommand) Description() string {
	return "Report orphaned and inconsistent records"
}

func (c *AuditCommand) Run(ctx context.Context, env *Env) error {
	checks := []struct {
		label string
		query string
	}{
		{"profiles", `SELECT COUNT(*) FROM profiles`},
		{"companies", `SELECT COUNT(*) FROM companies`},
		{"agents", `SELECT COUNT(*) FROM agents`},
		{"leads", `SELECT COUNT(*) FROM leads`},
		{"agents without a profile", `
			SELECT COUNT(*) FROM agents a
			WHERE NOT EXISTS (SELECT 1 FROM profiles p WHERE p.user_id = a.user_id)`},
		{"agents unlinked from vendor", `
			SELECT COUNT(*) FROM agents WHERE vendor_agent_id IS NULL`},
		{"leads on unlinked agents", `
			SELECT COUNT(*) FROM leads l
			JOIN agents a ON a.id = l.agent_id
			WHERE a.vendor_agent_id IS NULL`},
		{"leads missing contact details", `
			SELECT COUNT(*) FROM leads WHERE name = '' AND phone = ''`},
		{"unapproved profiles", `
			SELECT COUNT(*) FROM profiles WHERE NOT approved`},
	}

	for _, check := range checks {
		var count int
		if err := env.DB.QueryRowContext(ctx, check.query).Scan(&count); err != nil {
			return fmt.Errorf("audit %s: %w", check.label, err)
		}
		fmt.Printf("%-32s %d\n", check.label, count)
	}

	return nil
}
