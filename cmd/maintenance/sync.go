package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/iautomae/platform/internal/webhooks"
)

func init() {
	registerCommand(&SyncCommand{})
}

// SyncCommand reconciles vendor conversations into lead records. Leads
// are keyed on conversation ID, so re-running over the same history is
// idempotent: existing rows are updated, never duplicated.
type SyncCommand struct{}

func (c *SyncCommand) Name() string { return "sync" }

func (c *SyncCommand) Description() string {
	return "Fetch vendor conversations for every linked agent and upsert leads"
}

func (c *SyncCommand) Run(ctx context.Context, env *Env) error {
	vendorIDs, err := env.Agents.ClaimedVendorIDs(ctx)
	if err != nil {
		return fmt.Errorf("list linked agents: %w", err)
	}

	var synced, failed int
	for _, vendorID := range vendorIDs {
		agent, err := env.Agents.FindByVendorID(ctx, vendorID)
		if err != nil {
			env.Logger.Error("failed to resolve linked agent", "vendor_agent_id", vendorID, "error", err)
			failed++
			continue
		}

		conversations, err := env.Vendor.ListConversations(ctx, vendorID)
		if err != nil {
			env.Logger.Error("failed to list conversations", "vendor_agent_id", vendorID, "error", err)
			failed++
			continue
		}

		for _, summary := range conversations {
			data, err := env.Vendor.GetConversation(ctx, summary.ConversationID)
			if err != nil {
				env.Logger.Error("failed to fetch conversation", "conversation_id", summary.ConversationID, "error", err)
				failed++
				continue
			}

			var payload webhooks.Payload
			if err := json.Unmarshal(data, &payload); err != nil {
				env.Logger.Error("failed to decode conversation", "conversation_id", summary.ConversationID, "error", err)
				failed++
				continue
			}
			if payload.ConversationID == "" {
				payload.ConversationID = summary.ConversationID
			}

			if _, err := env.Leads.Upsert(ctx, payload.LeadCommand(agent.ID)); err != nil {
				env.Logger.Error("failed to upsert lead", "conversation_id", payload.ConversationID, "error", err)
				failed++
				continue
			}
			synced++
		}
	}

	fmt.Printf("synced %d conversations across %d agents (%d failures)\n", synced, len(vendorIDs), failed)
	return nil
}
