package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Configs struct {
	Env string

	Log              LogConfigs
	Database         DatabaseConfigs
	ApiServer        ServerConfigs
	PrometheusServer ServerConfigs
	Auth             AuthConfigs
	Redis            RedisConfigs
	Kafka            KafkaConfigs
	Ledger           LedgerConfigs
	DailyClaim       DailyClaimConfigs
	Referral         ReferralConfigs
	Leaderboard      LeaderboardConfigs
	RateLimit        RateLimitConfigs
	Outbox           OutboxConfigs
}

type LogConfigs struct {
	Level string
}

type DatabaseConfigs struct {
	Driver   string
	Host     string
	Port     string
	Database string
	User     string
	Password string

	// Path is the sqlite file, used only when Driver is sqlite.
	Path string
}

func (d *DatabaseConfigs) ConnectionString() string {
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(d.Host, d.Port)
	cfg.DBName = d.Database
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	return cfg.FormatDSN()
}

type ServerConfigs struct {
	Host string
	Port string
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
	AdminIDs    []string
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addrs []string
}

type LedgerConfigs struct {
	// TimeZone is the IANA zone in which reward days are counted.
	TimeZone string

	// FallbackOffsetMinutes is the fixed UTC offset used when TimeZone cannot be loaded.
	FallbackOffsetMinutes int

	// CutoffMinutes is the number of minutes after local midnight at which a new reward day
	// starts. Instants at or after the cutoff belong to the next calendar day.
	CutoffMinutes int

	// BaseCap is the daily ticket cap before multipliers. Zero disables the cap.
	BaseCap int64

	// NodeID identifies this process in snowflake ids of outbox events.
	NodeID int64

	ShardCount        int
	LevelStep         int64
	EffectDuration    time.Duration
	TransactionRetry  int
	AggregateCacheTTL time.Duration
}

type DailyClaimConfigs struct {
	RewardByStreak []int64
}

type ReferralConfigs struct {
	ActiveThreshold int64
}

type LeaderboardConfigs struct {
	SnapshotCron    string
	SnapshotSize    int
	SnapshotBatch   int
	SnapshotLockTTL time.Duration
	FoldSweepCron   string
}

type RateLimitConfigs struct {
	GrantPerMinute int
}

type OutboxConfigs struct {
	PollInterval time.Duration
	BatchSize    int
}

func Default() Configs {
	return Configs{
		Env: "local",
		Log: LogConfigs{Level: "info"},
		Database: DatabaseConfigs{
			Driver:   "mysql",
			Host:     "localhost",
			Port:     "3306",
			Database: "ledger",
			User:     "root",
			Path:     "ledger.db",
		},
		ApiServer:        ServerConfigs{Port: "8080"},
		PrometheusServer: ServerConfigs{Port: "9090"},
		Auth: AuthConfigs{
			AccessToken: TokenConfigs{Name: "access_token", Expiration: 24 * time.Hour},
		},
		Redis: RedisConfigs{Addr: "localhost:6379"},
		Kafka: KafkaConfigs{Addrs: []string{"localhost:9092"}},
		Ledger: LedgerConfigs{
			TimeZone:              "Europe/Berlin",
			FallbackOffsetMinutes: 60,
			CutoffMinutes:         20*60 + 15,
			BaseCap:               3,
			NodeID:                1,
			ShardCount:            32,
			LevelStep:             100,
			EffectDuration:        24 * time.Hour,
			TransactionRetry:      5,
			AggregateCacheTTL:     10 * time.Second,
		},
		DailyClaim: DailyClaimConfigs{
			RewardByStreak: []int64{10, 20, 30, 40, 50, 60, 100},
		},
		Referral: ReferralConfigs{ActiveThreshold: 50},
		Leaderboard: LeaderboardConfigs{
			SnapshotCron:    "5 0 * * *",
			SnapshotSize:    100,
			SnapshotBatch:   50,
			SnapshotLockTTL: time.Minute,
			FoldSweepCron:   "*/5 * * * *",
		},
		RateLimit: RateLimitConfigs{GrantPerMinute: 120},
		Outbox:    OutboxConfigs{PollInterval: time.Second, BatchSize: 100},
	}
}

// Load reads the toml file at path on top of the defaults. Secrets and addresses may be
// overridden by environment variables, which are also read from a .env file if present.
func Load(path string) (Configs, error) {
	cfg := Default()

	_ = godotenv.Load()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Configs{}, err
		}
	}

	overrideString(&cfg.Env, "ENV")
	overrideString(&cfg.Log.Level, "LOG_LEVEL")
	overrideString(&cfg.Database.Driver, "DB_DRIVER")
	overrideString(&cfg.Database.Host, "DB_HOST")
	overrideString(&cfg.Database.Port, "DB_PORT")
	overrideString(&cfg.Database.User, "DB_USER")
	overrideString(&cfg.Database.Password, "DB_PASSWORD")
	overrideString(&cfg.Database.Database, "DB_NAME")
	overrideString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	overrideString(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideString(&cfg.Ledger.TimeZone, "LEDGER_TIMEZONE")
	if addrs := os.Getenv("KAFKA_ADDRS"); addrs != "" {
		cfg.Kafka.Addrs = strings.Split(addrs, ",")
	}

	return cfg, nil
}

func overrideString(field *string, env string) {
	if v := os.Getenv(env); v != "" {
		*field = v
	}
}
