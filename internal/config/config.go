// Package config holds the immutable runtime configuration. It is loaded once
// in cmd and passed into constructors; nothing below cmd reads ambient state.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the full jobscout configuration tree, unmarshalled from the yaml
// config file via viper.
type Config struct {
	Profile  Profile  `mapstructure:"profile"`
	Scoring  Scoring  `mapstructure:"scoring"`
	Sources  Sources  `mapstructure:"sources"`
	Database Database `mapstructure:"database"`
	Redis    Redis    `mapstructure:"redis"`
	Email    Email    `mapstructure:"email"`
	Server   Server   `mapstructure:"server"`
	Schedule Schedule `mapstructure:"schedule"`
}

// Profile is the static candidate profile jobs are matched against.
type Profile struct {
	Name               string   `mapstructure:"name"`
	HomeLocation       string   `mapstructure:"home-location"`
	MaxExperienceYears int      `mapstructure:"max-experience-years"`
	TargetRoles        []string `mapstructure:"target-roles"`
	Skills             []string `mapstructure:"skills"`
	PreferredLocations []string `mapstructure:"preferred-locations"`
}

// Weights are the five scoring factor weights. They are designed to sum to 1
// but are not required to.
type Weights struct {
	Keyword     float64 `mapstructure:"keyword"`
	Experience  float64 `mapstructure:"experience"`
	Location    float64 `mapstructure:"location"`
	CompanyType float64 `mapstructure:"company-type"`
	Salary      float64 `mapstructure:"salary"`
}

type Scoring struct {
	MinRelevanceScore float64 `mapstructure:"min-relevance-score"`
	HighPriorityScore float64 `mapstructure:"high-priority-score"`
	Weights           Weights `mapstructure:"weights"`
}

type Sources struct {
	Workers        int            `mapstructure:"workers"`
	RequestTimeout time.Duration  `mapstructure:"request-timeout"`
	AdapterTimeout time.Duration  `mapstructure:"adapter-timeout"`
	UserAgent      string         `mapstructure:"user-agent"`
	ATS            ATSSource      `mapstructure:"ats"`
	CareerPages    CareerPages    `mapstructure:"career-pages"`
	Browser        BrowserPortals `mapstructure:"browser"`
}

type ATSSource struct {
	Enabled       bool   `mapstructure:"enabled"`
	CompaniesFile string `mapstructure:"companies-file"`
}

type CareerPages struct {
	Enabled       bool   `mapstructure:"enabled"`
	CompaniesFile string `mapstructure:"companies-file"`
	MaxRetries    int    `mapstructure:"max-retries"`
}

type BrowserPortals struct {
	Enabled    bool `mapstructure:"enabled"`
	MaxScrolls int  `mapstructure:"max-scrolls"`
}

type Database struct {
	URL string `mapstructure:"url"`
}

type Redis struct {
	URL     string        `mapstructure:"url"`
	SeenTTL time.Duration `mapstructure:"seen-ttl"`
}

type Email struct {
	Enabled      bool   `mapstructure:"enabled"`
	SMTPHost     string `mapstructure:"smtp-host"`
	SMTPPort     int    `mapstructure:"smtp-port"`
	Sender       string `mapstructure:"sender"`
	Recipient    string `mapstructure:"recipient"`
	PasswordFile string `mapstructure:"password-file"`
	SendDigest   bool   `mapstructure:"send-digest"`
	SendAlerts   bool   `mapstructure:"send-alerts"`
	MaxAlerts    int    `mapstructure:"max-alerts"`
}

type Server struct {
	Addr string `mapstructure:"addr"`
}

type Schedule struct {
	IntervalHours int `mapstructure:"interval-hours"`
}

// Default returns the configuration used when the config file leaves a
// section out. The profile targets an entry-level data analyst in Hyderabad,
// matching the shipped companies catalog.
func Default() Config {
	return Config{
		Profile: Profile{
			HomeLocation:       "Hyderabad",
			MaxExperienceYears: 2,
			TargetRoles: []string{
				"Data Analyst", "Associate Data Engineer", "Data Engineer",
				"SQL Developer", "Business Analyst", "System Engineer",
				"Junior Data Analyst", "Analyst", "MIS Executive", "Reporting Analyst",
			},
			Skills: []string{
				"SQL", "Python", "Power BI", "Tableau", "Excel",
				"pandas", "numpy", "Data Analysis", "ETL",
				"MySQL", "PostgreSQL", "Data Visualization",
				"Statistical Analysis", "Azure", "Git", "R",
			},
			PreferredLocations: []string{"Hyderabad", "Bangalore", "Remote", "Work from Home"},
		},
		Scoring: Scoring{
			MinRelevanceScore: 35,
			HighPriorityScore: 65,
			Weights: Weights{
				Keyword:     0.25,
				Experience:  0.35,
				Location:    0.20,
				CompanyType: 0.10,
				Salary:      0.10,
			},
		},
		Sources: Sources{
			Workers:        8,
			RequestTimeout: 15 * time.Second,
			AdapterTimeout: 90 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/131 Safari/537.36",
			ATS:            ATSSource{Enabled: true},
			CareerPages:    CareerPages{Enabled: true, MaxRetries: 2},
			Browser:        BrowserPortals{Enabled: false, MaxScrolls: 2},
		},
		Redis: Redis{
			SeenTTL: 7 * 24 * time.Hour,
		},
		Email: Email{
			SMTPHost:   "smtp.gmail.com",
			SMTPPort:   587,
			SendDigest: true,
			SendAlerts: true,
			MaxAlerts:  10,
		},
		Server: Server{
			Addr: ":8080",
		},
		Schedule: Schedule{
			IntervalHours: 6,
		},
	}
}

// Validate rejects configurations the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("database url is required (set database.url or JOBSCOUT_DATABASE_URL)")
	}
	if len(c.Profile.Skills) == 0 {
		return fmt.Errorf("profile skills are required")
	}
	if len(c.Profile.TargetRoles) == 0 {
		return fmt.Errorf("profile target roles are required")
	}
	if c.Sources.Workers < 1 {
		return fmt.Errorf("sources workers must be at least 1, got %d", c.Sources.Workers)
	}
	if c.Scoring.Weights.Keyword < 0 || c.Scoring.Weights.Experience < 0 ||
		c.Scoring.Weights.Location < 0 || c.Scoring.Weights.CompanyType < 0 ||
		c.Scoring.Weights.Salary < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	return nil
}

// SourcesEnabled reports whether any adapter family is switched on.
func (c *Config) SourcesEnabled() bool {
	return c.Sources.ATS.Enabled || c.Sources.CareerPages.Enabled || c.Sources.Browser.Enabled
}
