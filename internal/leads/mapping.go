package leads

import (
	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "leads", "l").
	Project("id", "ID").
	Project("agent_id", "AgentID").
	Project("conversation_id", "ConversationID").
	Project("name", "Name").
	Project("phone", "Phone").
	Project("status", "Status").
	Project("summary", "Summary").
	Project("transcript", "Transcript").
	Project("tokens", "Tokens").
	Project("credits", "Credits").
	Project("advisor_name", "AdvisorName").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{Field: "CreatedAt", Descending: true}

func scanLead(s repository.Scanner) (Lead, error) {
	var l Lead
	err := s.Scan(
		&l.ID,
		&l.AgentID,
		&l.ConversationID,
		&l.Name,
		&l.Phone,
		&l.Status,
		&l.Summary,
		&l.Transcript,
		&l.Tokens,
		&l.Credits,
		&l.AdvisorName,
		&l.CreatedAt,
	)
	return l, err
}
