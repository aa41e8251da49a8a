package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/networkteam/cvsuite/config"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeEnvFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoad_ProcessEnvWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	writeEnvFile(t, dir, "stage.env", "BASE_URL=https://file.example.com\nENVIRONMENT_NAME=Stage\nTEST_EMPLOYEE_EMAIL=file@example.com\nTEST_EMPLOYEE_PASSWORD=from-file\n")

	cfg, err := config.Load(config.LoadOptions{
		EnvDir: dir,
		LookupEnv: envMap(map[string]string{
			"test_env":               "stage",
			"TEST_EMPLOYEE_PASSWORD": "from-secret",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "stage", cfg.TestEnv)
	assert.Equal(t, "https://file.example.com", cfg.BaseURL)
	assert.Equal(t, "stage", cfg.EnvironmentKey())

	creds := cfg.Credentials(config.RoleEmployee)
	assert.Equal(t, "file@example.com", creds.Email)
	assert.Equal(t, "from-secret", creds.Password)
}

func TestLoad_TestEnvSelection(t *testing.T) {
	tests := []struct {
		name string
		opts config.LoadOptions
		env  map[string]string
		want string
	}{
		{name: "default", want: config.DefaultTestEnv},
		{name: "lower case variable", env: map[string]string{"test_env": "qa"}, want: "qa"},
		{name: "upper case variable", env: map[string]string{"TEST_ENV": "dev"}, want: "dev"},
		{name: "lower case wins", env: map[string]string{"test_env": "qa", "TEST_ENV": "dev"}, want: "qa"},
		{name: "explicit option", opts: config.LoadOptions{TestEnv: "local"}, env: map[string]string{"TEST_ENV": "dev"}, want: "local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.EnvDir = t.TempDir()
			opts.LookupEnv = envMap(tt.env)

			cfg, err := config.Load(opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.TestEnv)
		})
	}
}

func TestLoad_MissingValuesReadEmpty(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{EnvDir: t.TempDir(), LookupEnv: envMap(nil)})
	require.NoError(t, err)

	assert.Empty(t, cfg.BaseURL)
	assert.Equal(t, config.DefaultEnvironmentKey, cfg.EnvironmentKey())
	assert.Equal(t, config.DefaultAuthDir, cfg.AuthDir)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.EnableCoverage)
	assert.Equal(t, 1.0, cfg.TimeoutScale)
	assert.Empty(t, cfg.ConfiguredRoles())

	creds := cfg.Credentials(config.RoleManager)
	assert.Equal(t, config.RoleManager, creds.Role)
	assert.Empty(t, creds.Email)
	assert.False(t, creds.Complete())
}

func TestConfig_Require(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{
		EnvDir: t.TempDir(),
		LookupEnv: envMap(map[string]string{
			"TEST_SHADOW_SBU_EMAIL":    "shadow@example.com",
			"TEST_SHADOW_SBU_PASSWORD": "secret",
			"TEST_ADMIN_EMAIL":         "admin@example.com",
		}),
	})
	require.NoError(t, err)

	assert.NoError(t, cfg.Require(config.RoleShadowSBU))

	err = cfg.Require(config.RoleAdmin)
	require.ErrorIs(t, err, config.ErrMissingCredentials)
	assert.Contains(t, err.Error(), "TEST_ADMIN_PASSWORD")
	assert.NotContains(t, err.Error(), "TEST_ADMIN_EMAIL")

	assert.Equal(t, []config.Role{config.RoleShadowSBU}, cfg.ConfiguredRoles())
}

func TestLoad_InvalidTimeoutScale(t *testing.T) {
	_, err := config.Load(config.LoadOptions{
		EnvDir:    t.TempDir(),
		LookupEnv: envMap(map[string]string{"CVSUITE_TIMEOUT_SCALE": "fast"}),
	})
	assert.Error(t, err)
}

func TestConfig_URL(t *testing.T) {
	cfg, err := config.Load(config.LoadOptions{
		EnvDir:    t.TempDir(),
		LookupEnv: envMap(map[string]string{"BASE_URL": "https://cv.example.com/"}),
	})
	require.NoError(t, err)

	assert.Equal(t, "https://cv.example.com/cv-templates", cfg.URL("/cv-templates"))
	assert.Equal(t, "https://cv.example.com/login", cfg.URL("login"))
	assert.Equal(t, "https://cv.example.com/", cfg.URL(""))
}

func TestParseRole(t *testing.T) {
	for input, want := range map[string]config.Role{
		"employee":     config.RoleEmployee,
		"SHADOW_SBU":   config.RoleShadowSBU,
		" Super-Admin": config.RoleSuperAdmin,
	} {
		got, err := config.ParseRole(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := config.ParseRole("guest")
	assert.Error(t, err)
}

func TestRole_EnvPrefix(t *testing.T) {
	assert.Equal(t, "TEST_SUPER_ADMIN", config.RoleSuperAdmin.EnvPrefix())
	assert.Equal(t, "TEST_SHADOW_SBU", config.RoleShadowSBU.EnvPrefix())
}
