package main

import (
	"log"

	"trawler-engine/internal/config"
	"trawler-engine/internal/secrets"
	"trawler-engine/internal/source"
	"trawler-engine/internal/source/adzuna"
	"trawler-engine/internal/source/emailalert"
	"trawler-engine/internal/source/indeed"
	"trawler-engine/internal/source/jsearch"
	"trawler-engine/internal/source/linkedin"
	"trawler-engine/internal/source/reed"
	"trawler-engine/internal/source/util"
)

// buildRegistry registers every known board. Sources stay registered whether
// or not they are enabled; the orchestrator consults the config per run, so a
// config flip needs no restart.
func buildRegistry(cfg config.Config, limiter *util.HostLimiter) *source.Registry {
	reg := source.NewRegistry()

	mustRegister := func(s *source.Source) {
		if err := reg.Register(s); err != nil {
			log.Fatalf("register %s: %v", s.ID, err)
		}
	}

	// Adzuna: API when credentials exist, scrape as fallback either way.
	adzunaCreds := secrets.ResolveCredentials("adzuna", cfg.Sources["adzuna"].Credentials)
	var adzunaStrategies []source.Fetcher
	if adzunaCreds.Key != "" {
		adzunaStrategies = append(adzunaStrategies, adzuna.NewAPI(adzunaCreds.ID, adzunaCreds.Key, limiter))
	}
	adzunaStrategies = append(adzunaStrategies, adzuna.NewScraper(limiter))
	mustRegister(&source.Source{
		ID:         "adzuna",
		BaseURL:    "https://www.adzuna.co.uk",
		Strategies: adzunaStrategies,
	})

	// JSearch is API-only; without a key the source simply fails its fetch
	// and validation warns long before that.
	jsearchCreds := secrets.ResolveCredentials("jsearch", cfg.Sources["jsearch"].Credentials)
	mustRegister(&source.Source{
		ID:         "jsearch",
		BaseURL:    "https://jsearch.p.rapidapi.com",
		Strategies: []source.Fetcher{jsearch.New(jsearchCreds.Key, limiter)},
	})

	mustRegister(&source.Source{
		ID:         "indeed",
		BaseURL:    "https://uk.indeed.com",
		Strategies: []source.Fetcher{indeed.New(limiter)},
	})

	mustRegister(&source.Source{
		ID:         "linkedin",
		BaseURL:    "https://www.linkedin.com",
		Strategies: []source.Fetcher{linkedin.New(limiter)},
	})

	mustRegister(&source.Source{
		ID:         "reed",
		BaseURL:    "https://www.reed.co.uk",
		Strategies: []source.Fetcher{reed.New(limiter)},
	})

	if cfg.Email.Enabled {
		pw, err := secrets.GetIMAPPassword(secrets.IMAPAccount(cfg.Email))
		if err != nil {
			log.Printf("[emailalert] disabled: %v", err)
		} else {
			mustRegister(&source.Source{
				ID:           emailalert.SourceID,
				BaseURL:      "https://www.linkedin.com",
				TermAgnostic: true,
				Strategies: []source.Fetcher{&emailalert.Fetcher{
					Cfg:      cfg.Email,
					Password: pw,
				}},
			})
		}
	}

	return reg
}
