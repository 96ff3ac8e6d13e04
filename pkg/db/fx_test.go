package db_test

import (
	"testing"
	"time"

	"github.com/orbitcrm/orbitcrm/internal/config"
	"github.com/orbitcrm/orbitcrm/pkg/db"
	"github.com/stretchr/testify/assert"
)

func TestConfigFrom(t *testing.T) {
	settings := config.Database{
		Type:            "postgres",
		Host:            "db.internal",
		Port:            "5433",
		Name:            "orbitcrm",
		User:            "app",
		Password:        "secret",
		SSLMode:         "require",
		MaxIdleConn:     3,
		MaxOpenConn:     30,
		ConnMaxLifetime: 15 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
	}

	cfg := db.ConfigFrom(settings)
	assert.Equal(t, db.Config{
		Type:            "postgres",
		Host:            "db.internal",
		Port:            "5433",
		Name:            "orbitcrm",
		User:            "app",
		Password:        "secret",
		SSLMode:         "require",
		MaxIdleConn:     3,
		MaxOpenConn:     30,
		ConnMaxLifetime: 15 * time.Minute,
		ConnMaxIdleTime: 2 * time.Minute,
	}, cfg)
}
