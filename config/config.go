package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Rooms      RoomsConfig      `yaml:"rooms"`
	Booking    BookingConfig    `yaml:"booking"`
	Realtime   RealtimeConfig   `yaml:"realtime"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
	Jobs       JobsConfig       `yaml:"jobs"`
	Attendance AttendanceConfig `yaml:"attendance"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	PortAttempts    int      `yaml:"port_attempts"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	Timezone        string   `yaml:"timezone"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogSQL                 bool   `yaml:"log_sql"`
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	TokenTTLHours    int           `yaml:"token_ttl_hours"`
	TokenTTL         time.Duration `yaml:"-"`
	AllowAdminSignup bool          `yaml:"allow_admin_signup"`
}

// RoomsConfig controls the room directory display grid and the default seed.
type RoomsConfig struct {
	TotalTarget   int    `yaml:"total_target"`
	HostelName    string `yaml:"hostel_name"`
	SeedThreshold int    `yaml:"seed_threshold"`
	SeedFloors    int    `yaml:"seed_floors"`
	SeedPerFloor  int    `yaml:"seed_per_floor"`
	SeedCapacity  int    `yaml:"seed_capacity"`
}

// BookingConfig tunes the allocation workflow.
type BookingConfig struct {
	// StrictRoommates rejects an approval when a roommate roll number does
	// not resolve to an account instead of dropping it.
	StrictRoommates bool `yaml:"strict_roommates"`
}

// RealtimeConfig holds the websocket hub settings.
type RealtimeConfig struct {
	OutboxSize   int    `yaml:"outbox_size"`
	RedisAddr    string `yaml:"redis_addr"`
	RedisChannel string `yaml:"redis_channel"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// JobsConfig holds the background job intervals. Zero disables a job.
type JobsConfig struct {
	GatePassExpiryIntervalSeconds int           `yaml:"gatepass_expiry_interval_seconds"`
	GatePassExpiryInterval        time.Duration `yaml:"-"`
}

// AttendanceConfig controls daily check-in/out.
type AttendanceConfig struct {
	// Curfew is the HH:MM after which a check-in is flagged as late.
	Curfew string `yaml:"curfew"`
}

// Load reads the configuration from the given path, then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("could not load .env: %v", err)
	}

	var cfg Config
	f, err := os.Open(path)
	switch {
	case err == nil:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, err
		}
	case errors.Is(err, fs.ErrNotExist):
		log.Printf("config file %s not found; using environment and defaults", path)
	default:
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("CLIENT_ORIGIN"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := envInt("PORT"); v > 0 {
		cfg.Server.Port = v
	}
	if v := envInt("HOSTEL_TOTAL_ROOMS"); v > 0 {
		cfg.Rooms.TotalTarget = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Realtime.RedisAddr = v
	}
	if v := os.Getenv("VAPID_PUBLIC_KEY"); v != "" {
		cfg.Push.PublicKey = v
	}
	if v := os.Getenv("VAPID_PRIVATE_KEY"); v != "" {
		cfg.Push.PrivateKey = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5000
	}
	if cfg.Server.PortAttempts <= 0 {
		cfg.Server.PortAttempts = 5
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:7000", "http://localhost:7001"}
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	if cfg.Server.Timezone == "" {
		cfg.Server.Timezone = "Local"
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:hostel.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Auth.JWTSecret == "" {
		log.Printf("auth.jwt_secret is not set; using an insecure development secret")
		cfg.Auth.JWTSecret = "dev_secret"
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 7 * 24
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour

	if cfg.Rooms.TotalTarget <= 0 {
		cfg.Rooms.TotalTarget = 331
	}
	if cfg.Rooms.HostelName == "" {
		cfg.Rooms.HostelName = "Ponnar"
	}
	if cfg.Rooms.SeedThreshold <= 0 {
		cfg.Rooms.SeedThreshold = 100
	}
	if cfg.Rooms.SeedFloors <= 0 {
		cfg.Rooms.SeedFloors = 3
	}
	if cfg.Rooms.SeedPerFloor <= 0 {
		cfg.Rooms.SeedPerFloor = 34
	}
	if cfg.Rooms.SeedCapacity <= 0 {
		cfg.Rooms.SeedCapacity = 2
	}

	if cfg.Realtime.OutboxSize <= 0 {
		cfg.Realtime.OutboxSize = 64
	}
	if cfg.Realtime.RedisChannel == "" {
		cfg.Realtime.RedisChannel = "hostel:events"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	if cfg.Jobs.GatePassExpiryIntervalSeconds < 0 {
		cfg.Jobs.GatePassExpiryIntervalSeconds = 0
	}
	cfg.Jobs.GatePassExpiryInterval = time.Duration(cfg.Jobs.GatePassExpiryIntervalSeconds) * time.Second

	if cfg.Attendance.Curfew == "" {
		cfg.Attendance.Curfew = "22:00"
	}
}

// Location resolves the configured timezone, falling back to the local zone.
func (s ServerConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		log.Printf("Warning: invalid timezone %q: %v. Using local time.", s.Timezone, err)
		return time.Local
	}
	return loc
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envInt(key string) int {
	v := os.Getenv(key)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, v, err)
		return 0
	}
	return n
}
