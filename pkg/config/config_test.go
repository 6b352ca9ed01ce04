package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clientConfig struct {
	CatalogURL string        `env:"CATALOG_URL" envDefault:"http://localhost:8080/"`
	Timeout    time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`
	Retries    int           `env:"HTTP_MAX_RETRIES" envDefault:"0"`
	Breaker    bool          `env:"BREAKER_ENABLED" envDefault:"true"`
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		want    clientConfig
		wantErr string
	}{
		{
			name: "defaults",
			vars: map[string]string{},
			want: clientConfig{CatalogURL: "http://localhost:8080/", Timeout: 15 * time.Second, Breaker: true},
		},
		{
			name: "overrides",
			vars: map[string]string{
				"CATALOG_URL":      "https://catalog.example.com/v2/",
				"HTTP_TIMEOUT":     "500ms",
				"HTTP_MAX_RETRIES": "3",
				"BREAKER_ENABLED":  "false",
			},
			want: clientConfig{CatalogURL: "https://catalog.example.com/v2/", Timeout: 500 * time.Millisecond, Retries: 3},
		},
		{
			name:    "bad duration",
			vars:    map[string]string{"HTTP_TIMEOUT": "soon"},
			wantErr: "parse config",
		},
		{
			name:    "bad int",
			vars:    map[string]string{"HTTP_MAX_RETRIES": "many"},
			wantErr: "Retries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got clientConfig
			err := Load(&got, WithEnvironment(tt.vars))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_ProcessEnvironment(t *testing.T) {
	t.Setenv("CATALOG_URL", "http://10.0.0.5:8080/")

	var cfg clientConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "http://10.0.0.5:8080/", cfg.CatalogURL)
}

func TestLoad_Required(t *testing.T) {
	type secrets struct {
		Token string `env:"CATALOG_TOKEN,required"`
	}

	var missing secrets
	assert.ErrorContains(t, Load(&missing, WithEnvironment(map[string]string{})), "CATALOG_TOKEN")

	var present secrets
	require.NoError(t, Load(&present, WithEnvironment(map[string]string{"CATALOG_TOKEN": "t0k"})))
	assert.Equal(t, "t0k", present.Token)
}
