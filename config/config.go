package config

import (
	"fmt"
	"net/url"
	"runtime"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	// Figshare-kompatibles Upstream-API
	FigshareToken   string `envconfig:"FIGSHARE_TOKEN" required:"true"`
	FigshareBaseURL string `envconfig:"FIGSHARE_BASE_URL" default:"https://api.figshare.com/v2"`
	InstitutionID   int64  `envconfig:"INSTITUTION_ID" default:"898"`
	UserAgent       string `envconfig:"USER_AGENT" default:"rdbackup"`

	// Statistik-Host (Basic Auth, "user:pass" im Klartext)
	StatsAuth    string `envconfig:"STATS_AUTH"`
	StatsBaseURL string `envconfig:"STATS_BASE_URL" default:"https://stats.4tu.nl/v1"`

	// Snapshot-Ausgabe
	StateGraph      string `envconfig:"STATE_GRAPH" default:"https://data.4tu.nl/portal/self-test"`
	OutputDirectory string `envconfig:"OUTPUT_DIRECTORY" default:"./snapshots"`

	// Fan-Out-Breite pro Sweep/Enrichment-Pool; 0 = Anzahl CPUs
	Parallelism int `envconfig:"PARALLELISM" default:"0"`

	// Startwert für die intern vergebenen IDs (pro Entitätstyp)
	IDOffset int64 `envconfig:"ID_OFFSET" default:"0"`

	// Service-Modus
	HTTPPort     string `envconfig:"HTTP_PORT" default:"4243"`
	APISecretKey string `envconfig:"API_SECRET_KEY"`
	CronSchedule string `envconfig:"CRON_SCHEDULE" default:"0 2 * * *"`

	// Lauf-Historie (optional; leer lassen, um ohne Datenbank zu laufen)
	DBHost     string `envconfig:"DB_HOST"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`

	// S3-Ablage für serialisierte Snapshots (optional)
	S3Key         string `envconfig:"SNAPSHOT_S3_KEY"`
	S3Secret      string `envconfig:"SNAPSHOT_S3_SECRET"`
	S3URL         string `envconfig:"SNAPSHOT_S3_URL"`
	S3Region      string `envconfig:"SNAPSHOT_S3_REGION"`
	S3Bucket      string `envconfig:"SNAPSHOT_S3_BUCKET"`
	KeepSnapshots int    `envconfig:"KEEP_SNAPSHOTS" default:"4"`
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

// Workers gibt die Fan-Out-Breite für Sweeps und Enrichment-Pools zurück.
func (c *Config) Workers() int {
	if c.Parallelism > 0 {
		return c.Parallelism
	}
	return runtime.NumCPU()
}

// LedgerEnabled meldet, ob eine Datenbank für die Lauf-Historie konfiguriert ist.
func (c *Config) LedgerEnabled() bool {
	return c.DBHost != ""
}

// S3Enabled meldet, ob Snapshots zusätzlich nach S3 hochgeladen werden sollen.
func (c *Config) S3Enabled() bool {
	return c.S3Bucket != ""
}

// Validate prüft die Konfiguration, bevor irgendein Netzwerkaufruf passiert.
func (c *Config) Validate() error {
	if c.FigshareToken == "" {
		return fmt.Errorf("FIGSHARE_TOKEN ist nicht gesetzt")
	}
	u, err := url.Parse(c.FigshareBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("FIGSHARE_BASE_URL ist keine gültige URL: %q", c.FigshareBaseURL)
	}
	if c.StateGraph == "" {
		return fmt.Errorf("STATE_GRAPH ist nicht gesetzt")
	}
	if c.OutputDirectory == "" {
		return fmt.Errorf("OUTPUT_DIRECTORY ist nicht gesetzt")
	}
	return nil
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
