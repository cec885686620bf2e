package config

import (
	"errors"
	"fmt"
	"os"

	"occupancy/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Calendar   CalendarConfig   `yaml:"calendar"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	Exports    ExportConfig     `yaml:"exports"`
	Rooms      []models.Room    `yaml:"rooms" validate:"dive"`
}

type APIConfig struct {
	HTTP      APIHTTPConfig      `yaml:"http"`
	GRPC      APIGRPCConfig      `yaml:"grpc"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port" validate:"gte=0,lte=65535"`
}

type APIGRPCConfig struct {
	Enabled    bool `yaml:"enabled"`
	Port       int  `yaml:"port" validate:"gte=0,lte=65535"`
	Reflection bool `yaml:"reflection"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps" validate:"gte=0"`
	Burst int     `yaml:"burst" validate:"gte=0"`
}

// UpstreamConfig selects where bookings come from. The first configured
// provider wins: PMS, then Sheets, then generated sample data.
type UpstreamConfig struct {
	PMS            PMSConfig    `yaml:"pms"`
	Sheets         SheetsConfig `yaml:"sheets"`
	TimeoutSeconds int          `yaml:"timeout_seconds" validate:"gte=0"`
}

type PMSConfig struct {
	BaseURL string `yaml:"base_url" validate:"omitempty,url"`
	APIKey  string `yaml:"api_key"`
	// Provider is the default source label for records naming no channel.
	Provider string `yaml:"provider"`
}

func (p PMSConfig) Configured() bool {
	return p.BaseURL != "" && p.APIKey != ""
}

type SheetsConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
	SpreadsheetID   string `yaml:"spreadsheet_id"`
	Range           string `yaml:"range"`
}

func (s SheetsConfig) Configured() bool {
	return s.CredentialsFile != "" && s.SpreadsheetID != ""
}

type CalendarConfig struct {
	DayWidthPx         int `yaml:"day_width_px" validate:"gte=0"`
	LaneHeightPx       int `yaml:"lane_height_px" validate:"gte=0"`
	RowPaddingPx       int `yaml:"row_padding_px" validate:"gte=0"`
	ResizeDebounceMs   int `yaml:"resize_debounce_ms" validate:"gte=0"`
	ViewStateTTLSecond int `yaml:"view_state_ttl_seconds" validate:"gte=0"`
	SessionIdleSecond  int `yaml:"session_idle_seconds" validate:"gte=0"`
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers" validate:"required_if=Enabled true"`
	Topic   string   `yaml:"topic" validate:"required_if=Enabled true"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port" validate:"gte=0,lte=65535"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format" validate:"omitempty,oneof=json console"`
	Output   string `yaml:"output" validate:"omitempty,oneof=stdout stderr file"`
	FilePath string `yaml:"file_path"`
}

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if len(c.Rooms) == 0 {
		return nil
	}
	return ValidateRooms(c.Rooms)
}

// ValidateRooms rejects an empty list, blank names and names or upstream ids
// that collide once case-folded.
func ValidateRooms(rooms []models.Room) error {
	if len(rooms) == 0 {
		return errors.New("at least one room is required")
	}

	names := make(map[string]bool, len(rooms))
	ids := make(map[string]string)
	for _, room := range rooms {
		if err := validate.Struct(room); err != nil {
			return fmt.Errorf("room %q: %w", room.Name, err)
		}
		key := models.RoomKey(room.Name)
		if key == "" {
			return errors.New("room with blank name")
		}
		if names[key] {
			return fmt.Errorf("duplicate room name: %s", room.Name)
		}
		names[key] = true

		for _, id := range room.IDs {
			idKey := models.RoomKey(id)
			if owner, ok := ids[idKey]; ok {
				return fmt.Errorf("upstream id %q used by rooms %s and %s", id, owner, room.Name)
			}
			ids[idKey] = room.Name
		}
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "occupancy"
	}
	if c.API.GRPC.Port == 0 {
		c.API.GRPC.Port = 8081
	}
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 5
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Upstream.TimeoutSeconds == 0 {
		c.Upstream.TimeoutSeconds = models.DefaultUpstreamTimeout
	}
	if c.Upstream.Sheets.Range == "" {
		c.Upstream.Sheets.Range = "Bookings!A:Z"
	}

	// Calendar defaults
	if c.Calendar.DayWidthPx == 0 {
		c.Calendar.DayWidthPx = models.DefaultDayWidthPx
	}
	if c.Calendar.LaneHeightPx == 0 {
		c.Calendar.LaneHeightPx = models.DefaultLaneHeightPx
	}
	if c.Calendar.RowPaddingPx == 0 {
		c.Calendar.RowPaddingPx = models.DefaultRowPaddingPx
	}
	if c.Calendar.ResizeDebounceMs == 0 {
		c.Calendar.ResizeDebounceMs = models.DefaultResizeDebounceMs
	}
	if c.Calendar.ViewStateTTLSecond == 0 {
		c.Calendar.ViewStateTTLSecond = models.DefaultViewStateTTL
	}
	if c.Calendar.SessionIdleSecond == 0 {
		c.Calendar.SessionIdleSecond = models.DefaultSessionIdle
	}

	if c.Kafka.Topic == "" && c.Kafka.Enabled {
		c.Kafka.Topic = "occupancy.calendar"
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
}
