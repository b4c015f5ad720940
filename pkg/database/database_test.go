package database

import (
	"testing"

	"mediastat/config"
	"mediastat/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDB(t *testing.T) {
	tests := []struct {
		name       string
		cfg        config.Database
		wantDriver string
		wantErr    bool
	}{
		{
			name:       "sqlite in memory",
			cfg:        config.Database{Driver: DriverSQLite, Path: "file:newdb?mode=memory"},
			wantDriver: DriverSQLite,
		},
		{
			name:       "empty driver defaults to sqlite",
			cfg:        config.Database{Path: "file:defaultdb?mode=memory"},
			wantDriver: DriverSQLite,
		},
		{
			name:    "unknown driver",
			cfg:     config.Database{Driver: "oracle"},
			wantErr: true,
		},
		{
			name:    "bad lifetime",
			cfg:     config.Database{Driver: DriverSQLite, Path: "file:lifetime?mode=memory", ConnMaxLifetime: "soon"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, err := NewDB(tt.cfg, logger.NewNop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer db.Close()
			assert.Equal(t, tt.wantDriver, db.Driver)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn := PostgresDSN(config.Database{
		Host: "db", User: "u", Password: "p", DBName: "stats", Port: 5432, SSLMode: "disable", TimeZone: "UTC",
	})
	assert.Equal(t, "host=db user=u password=p dbname=stats port=5432 sslmode=disable TimeZone=UTC", dsn)
}
