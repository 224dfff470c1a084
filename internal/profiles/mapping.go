package profiles

import (
	"encoding/json"

	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "profiles", "p").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("role", "Role").
	Project("approved", "Approved").
	Project("features", "Features").
	Project("logo_key", "LogoKey").
	Project("company_id", "CompanyID").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "CreatedAt"}

func scanProfile(s repository.Scanner) (Profile, error) {
	var (
		p        Profile
		features []byte
	)

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Role,
		&p.Approved,
		&features,
		&p.LogoKey,
		&p.CompanyID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return p, err
	}

	if len(features) > 0 {
		if err := json.Unmarshal(features, &p.Features); err != nil {
			return p, err
		}
	}
	if p.Features == nil {
		p.Features = map[string]bool{}
	}

	return p, nil
}
