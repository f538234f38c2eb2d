package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/equip-api/internal/config"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(s.dir, "equip.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	s.T().Chdir(s.dir)

	cfg, err := config.Load(nil, "")
	s.Require().NoError(err)

	s.Equal(50051, cfg.GRPC.Port)
	s.Empty(cfg.Redis.Addr)
	s.Equal(":9090", cfg.Metrics.Addr)
	s.Equal("equip", cfg.Metrics.Namespace)
	s.Equal(slog.LevelInfo, cfg.Log.SlogLevel())
	s.True(cfg.Sets.AutoSave)
	s.Equal([]equipment.LimitDefinition{
		{Name: "weight", Dimension: equipment.DimensionWeight},
		{Name: "price", Dimension: equipment.DimensionPrice},
	}, cfg.Limits.Definitions)
	s.Nil(cfg.Limits.GlobalLimits())
}

func (s *ConfigTestSuite) TestFileAndEnvironment() {
	path := s.writeConfig(`
grpc:
  port: 6000
redis:
  addr: localhost:6379
  ttl: 1h
log:
  level: debug
  format: json
limits:
  global:
    weight: 25
`)
	s.T().Setenv("EQUIP_GRPC_PORT", "7000")

	cfg, err := config.Load(viper.New(), path)
	s.Require().NoError(err)

	s.Equal(7000, cfg.GRPC.Port, "environment wins over the file")
	s.Equal("localhost:6379", cfg.Redis.Addr)
	s.Equal("1h0m0s", cfg.Redis.TTL.String())
	s.Equal(slog.LevelDebug, cfg.Log.SlogLevel())
	s.Equal(config.LogFormatJSON, cfg.Log.Format)
	s.Equal(equipment.Limits{"weight": 25}, cfg.Limits.GlobalLimits())
}

func (s *ConfigTestSuite) TestBoundValueWins() {
	v := viper.New()
	v.Set(config.KeyMetricsAddr, "")

	cfg, err := config.Load(v, s.writeConfig("metrics:\n  addr: :9999\n"))
	s.Require().NoError(err)
	s.Empty(cfg.Metrics.Addr)
}

func (s *ConfigTestSuite) TestInvalid() {
	testCases := []struct {
		name    string
		content string
	}{
		{name: "port out of range", content: "grpc:\n  port: 70000\n"},
		{name: "unknown log level", content: "log:\n  level: loud\n"},
		{name: "unknown log format", content: "log:\n  format: xml\n"},
		{name: "undefined global limit", content: "limits:\n  global:\n    volume: 3\n"},
		{name: "bad dimension", content: "limits:\n  definitions:\n    - name: bulk\n      dimension: volume\n"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := config.Load(viper.New(), s.writeConfig(tc.content))
			s.Require().Error(err)
			s.True(errors.IsInvalidArgument(err))
		})
	}
}

func (s *ConfigTestSuite) TestMissingExplicitFile() {
	_, err := config.Load(viper.New(), filepath.Join(s.dir, "missing.yaml"))
	s.Require().Error(err)
}
