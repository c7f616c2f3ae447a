package httpapi

import "net/http"

// NewMux returns the raw mux so main() can wrap it in middleware itself.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Trawl
	th := TrawlHandler{CfgVal: d.CfgVal, Trawler: d.Trawler, LoadProfile: d.LoadProfile}
	mux.HandleFunc("/trawl/run", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: th.Run,
	}))
	mux.HandleFunc("/trawl/progress", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Progress,
	}))
	mux.HandleFunc("/sources", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: th.Sources,
	}))
	mux.HandleFunc("/sources/", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: th.TestSource, // expects /sources/{id}/test
	}))

	// Matches archive
	mh := MatchesHandler{DB: d.DB}
	mux.HandleFunc("/matches", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: mh.List,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/source", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetSourceCredentials,
	}))
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{Trawler: d.Trawler}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
