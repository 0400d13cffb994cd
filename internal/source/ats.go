package source

import (
	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/config"
)

// NewATSAdapters builds one adapter per catalog company, routed by ATS kind.
// Unknown kinds are skipped with a warning so one bad catalog row cannot take
// the family down.
func NewATSAdapters(companies []Company, client *Client, profile config.Profile, logger *zap.Logger) []Adapter {
	pp := newPostProcessor(profile)

	adapters := make([]Adapter, 0, len(companies))
	for _, company := range companies {
		switch company.ATS {
		case ATSGreenhouse:
			adapters = append(adapters, NewGreenhouse(company, client, pp))
		case ATSLever:
			adapters = append(adapters, NewLever(company, client, pp))
		case ATSWorkday:
			adapters = append(adapters, NewWorkday(company, client, pp, profile.TargetRoles))
		case ATSSmartRecruiters:
			adapters = append(adapters, NewSmartRecruiters(company, client, pp))
		default:
			logger.Warn("skipping company with unknown ats kind",
				zap.String("company", company.Name),
				zap.String("ats", company.ATS),
			)
		}
	}

	return adapters
}
