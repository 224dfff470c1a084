package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func init() {
	registerCommand(&DedupeAgentsCommand{})
}

// DedupeAgentsCommand reports agents sharing a vendor agent ID. The
// partial unique index prevents new violations; rows predating it can
// still collide. With -repair, the oldest claim per vendor ID is kept
// and the rest are unlinked.
type DedupeAgentsCommand struct{}

func (c *DedupeAgentsCommand) Name() string { return "dedupe-agents" }

func (c *DedupeAgentsCommand) Description() string {
	return "Report or repair duplicate vendor agent claims"
}

func (c *DedupeAgentsCommand) Run(ctx context.Context, env *Env) error {
	rows, err := env.DB.QueryContext(ctx, `
		SELECT a.id, a.vendor_agent_id
		FROM agents a
		JOIN (
			SELECT vendor_agent_id
			FROM agents
			WHERE vendor_agent_id IS NOT NULL
			GROUP BY vendor_agent_id
			HAVING COUNT(*) > 1
		) d ON d.vendor_agent_id = a.vendor_agent_id
		ORDER BY a.vendor_agent_id, a.created_at`)
	if err != nil {
		return fmt.Errorf("query duplicate claims: %w", err)
	}
	defer rows.Close()

	claims := map[string][]uuid.UUID{}
	for rows.Next() {
		var (
			id       uuid.UUID
			vendorID string
		)
		if err := rows.Scan(&id, &vendorID); err != nil {
			return fmt.Errorf("scan duplicate claim: %w", err)
		}
		claims[vendorID] = append(claims[vendorID], id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(claims) == 0 {
		fmt.Println("no duplicate vendor agent claims found")
		return nil
	}

	for vendorID, ids := range claims {
		fmt.Printf("vendor agent %s claimed by %d local agents\n", vendorID, len(ids))

		if !env.Repair {
			continue
		}

		// Keep the earliest claim, unlink the rest.
		for _, id := range ids[1:] {
			if _, err := env.Agents.SetVendorAgentID(ctx, id, nil); err != nil {
				return fmt.Errorf("unlink agent %s: %w", id, err)
			}
			fmt.Printf("  unlinked agent %s\n", id)
		}
	}

	if !env.Repair {
		fmt.Println("run with -repair to unlink duplicate claims")
	}

	return nil
}
