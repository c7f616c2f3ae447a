package httpapi

import (
	"database/sql"
	"sync/atomic"

	"trawler-engine/internal/config"
	"trawler-engine/internal/events"
	"trawler-engine/internal/profile"
	"trawler-engine/internal/trawl"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// CfgVal stores config.Config; handlers always read the live value, never
	// a snapshot taken at startup.
	CfgVal *atomic.Value

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	Trawler *trawl.Trawler

	// LoadProfile re-reads the candidate profile at run time so a CV edit
	// takes effect without a restart.
	LoadProfile func() (profile.Profile, error)
}
