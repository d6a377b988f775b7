package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.toml")
	err := os.WriteFile(path, []byte(`
Env = "test"

[Ledger]
TimeZone = "Asia/Ho_Chi_Minh"
BaseCap = 5

[Referral]
ActiveThreshold = 10
`), 0o600)
	require.NoError(t, err)

	t.Setenv("TOKEN_SECRET", "secret")
	t.Setenv("KAFKA_ADDRS", "k1:9092,k2:9092")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "test", cfg.Env)
	require.Equal(t, "Asia/Ho_Chi_Minh", cfg.Ledger.TimeZone)
	require.Equal(t, int64(5), cfg.Ledger.BaseCap)
	require.Equal(t, int64(10), cfg.Referral.ActiveThreshold)
	require.Equal(t, "secret", cfg.Auth.TokenSecret)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Addrs)

	// Untouched sections keep their defaults.
	require.Equal(t, 32, cfg.Ledger.ShardCount)
	require.Equal(t, 20*60+15, cfg.Ledger.CutoffMinutes)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestDatabaseConfigs_ConnectionString(t *testing.T) {
	d := DatabaseConfigs{
		Host:     "db",
		Port:     "3306",
		Database: "ledger",
		User:     "root",
		Password: "p@ss:word",
	}

	dsn, err := mysql.ParseDSN(d.ConnectionString())
	require.NoError(t, err)
	require.Equal(t, "root", dsn.User)
	require.Equal(t, "p@ss:word", dsn.Passwd)
	require.Equal(t, "db:3306", dsn.Addr)
	require.Equal(t, "ledger", dsn.DBName)
	require.True(t, dsn.ParseTime)
	require.Equal(t, "utf8mb4", dsn.Params["charset"])
}
