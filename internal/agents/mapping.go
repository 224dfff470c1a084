package agents

import (
	"encoding/json"

	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "agents", "a").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("name", "Name").
	Project("prompt", "Prompt").
	Project("vendor_agent_id", "VendorAgentID").
	Project("phone_number", "PhoneNumber").
	Project("knowledge_files", "KnowledgeFiles").
	Project("notify", "Notify").
	Project("active", "Active").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanAgent(s repository.Scanner) (Agent, error) {
	var (
		a      Agent
		files  []byte
		notify []byte
	)

	err := s.Scan(
		&a.ID,
		&a.UserID,
		&a.Name,
		&a.Prompt,
		&a.VendorAgentID,
		&a.PhoneNumber,
		&files,
		&notify,
		&a.Active,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	if len(files) > 0 {
		if err := json.Unmarshal(files, &a.KnowledgeFiles); err != nil {
			return a, err
		}
	}
	if a.KnowledgeFiles == nil {
		a.KnowledgeFiles = []KnowledgeFile{}
	}

	if len(notify) > 0 {
		if err := json.Unmarshal(notify, &a.Notify); err != nil {
			return a, err
		}
	}

	return a, nil
}
