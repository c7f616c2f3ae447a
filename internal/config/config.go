package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials for boards with a documented API. Either field may stay empty in
// the file and be supplied via the OS keychain instead.
type Credentials struct {
	ID  string `yaml:"id"`
	Key string `yaml:"key"`
}

type SourceConfig struct {
	Enabled     bool        `yaml:"enabled"`
	Credentials Credentials `yaml:"credentials"`
}

type EmailConfig struct {
	Enabled          bool     `yaml:"enabled"`
	IMAPHost         string   `yaml:"imap_host"`
	IMAPPort         int      `yaml:"imap_port"`
	Username         string   `yaml:"username"`
	Mailbox          string   `yaml:"mailbox"`
	SearchSubjectAny []string `yaml:"search_subject_any"`
}

type Weights struct {
	Skills     float64 `yaml:"skills"`
	Keywords   float64 `yaml:"keywords"`
	Experience float64 `yaml:"experience"`
}

// DefaultWeights is the shipped tuning; operators retune via config, not code.
var DefaultWeights = Weights{Skills: 0.60, Keywords: 0.30, Experience: 0.10}

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Search struct {
		Terms    []string `yaml:"terms"`
		Location string   `yaml:"location"`
	} `yaml:"search"`

	// Sources is keyed by source id (adzuna, jsearch, indeed, linkedin, reed).
	Sources map[string]SourceConfig `yaml:"sources"`

	Email EmailConfig `yaml:"email"`

	Filters struct {
		LocationsAllow []string `yaml:"locations_allow"`
		LocationsBlock []string `yaml:"locations_block"`
	} `yaml:"filters"`

	Scoring struct {
		MinScore float64 `yaml:"min_score"`
		Weights  Weights `yaml:"weights"`
	} `yaml:"scoring"`

	Trawl struct {
		FetchTimeoutSeconds int     `yaml:"fetch_timeout_seconds"`
		RunBudgetSeconds    int     `yaml:"run_budget_seconds"`
		MaxParallel         int     `yaml:"max_parallel"`
		Retries             int     `yaml:"retries"`
		RequestsPerSecond   float64 `yaml:"requests_per_second"`
		Burst               int     `yaml:"burst"`
		EverySeconds        int     `yaml:"every_seconds"`
	} `yaml:"trawl"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// EnabledSources returns the enabled board ids (unsorted; callers sort).
// The email source is controlled by cfg.Email, not this map.
func (c Config) EnabledSources() []string {
	var out []string
	for id, sc := range c.Sources {
		if sc.Enabled {
			out = append(out, id)
		}
	}
	return out
}

// Defaults keep an old config file working when newer knobs are unset.

func (c Config) FetchTimeoutSecondsOrDefault() int {
	if c.Trawl.FetchTimeoutSeconds > 0 {
		return c.Trawl.FetchTimeoutSeconds
	}
	return 8
}

func (c Config) RetriesOrDefault() int {
	if c.Trawl.Retries > 0 {
		return c.Trawl.Retries
	}
	return 1
}

func (c Config) MaxParallelOrDefault() int {
	if c.Trawl.MaxParallel > 0 {
		return c.Trawl.MaxParallel
	}
	return 4
}

func (c Config) RequestsPerSecondOrDefault() float64 {
	if c.Trawl.RequestsPerSecond > 0 {
		return c.Trawl.RequestsPerSecond
	}
	return 1.0
}

func (c Config) BurstOrDefault() int {
	if c.Trawl.Burst > 0 {
		return c.Trawl.Burst
	}
	return 2
}

func (c Config) WeightsOrDefault() Weights {
	w := c.Scoring.Weights
	if w.Skills == 0 && w.Keywords == 0 && w.Experience == 0 {
		return DefaultWeights
	}
	return w
}
