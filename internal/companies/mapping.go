package companies

import (
	"github.com/iautomae/platform/pkg/query"
	"github.com/iautomae/platform/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "companies", "c").
	Project("id", "ID").
	Project("name", "Name").
	Project("niche", "Niche").
	Project("config", "Config").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{Field: "Name"}

func scanCompany(s repository.Scanner) (Company, error) {
	var (
		c      Company
		config []byte
	)

	err := s.Scan(
		&c.ID,
		&c.Name,
		&c.Niche,
		&config,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	if len(config) > 0 {
		c.Config = config
	} else {
		c.Config = []byte(`{}`)
	}

	return c, nil
}
