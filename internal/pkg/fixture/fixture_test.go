package fixture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, t.TempDir(), "steps.json", `{
		"test_services": [
			{"step_id": 0, "wait_seconds": 5.0, "interval_seconds": 0.5, "payload": {"service": "brakes"}},
			{"step_id": 1, "wait_seconds": 6.5}
		]
	}`)

	steps, err := Load(path)
	require.NoError(t, err)
	require.Len(t, steps, 2)

	require.Equal(t, uint64(0), steps[0].StepID)
	require.Equal(t, 5.0, steps[0].WaitSeconds)
	require.Equal(t, 500*time.Millisecond, steps[0].Interval)
	require.JSONEq(t, `{"service": "brakes"}`, string(steps[0].Payload))

	require.Equal(t, uint64(1), steps[1].StepID)
	require.Zero(t, steps[1].Interval)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad json", content: `{"test_services": [`},
		{name: "missing envelope", content: `{}`},
		{name: "empty services", content: `{"test_services": []}`},
		{name: "missing step_id", content: `{"test_services": [{"wait_seconds": 5.0}]}`},
		{name: "missing wait_seconds", content: `{"test_services": [{"step_id": 1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "steps.json", tt.content)
			_, err := Load(path)
			require.ErrorIs(t, err, ErrInvalidFixture)
		})
	}
}

func TestLoadZeroValuesAreValid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "steps.json", `{
		"test_services": [{"step_id": 0, "wait_seconds": 0}]
	}`)

	steps, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, uint64(0), steps[0].StepID)
	require.Zero(t, steps[0].WaitSeconds)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidFixture)
}

func TestThinkFallsBackToWait(t *testing.T) {
	require.Equal(t, 250*time.Millisecond, Step{WaitSeconds: 5, Interval: 250 * time.Millisecond}.Think())
	require.Equal(t, 5*time.Second, Step{WaitSeconds: 5}.Think())
}

func TestResolveCatalogEntry(t *testing.T) {
	dir := t.TempDir()
	catalog := writeFile(t, dir, "fixtures.toml", `
[datasets]
success = "data/ok.json"
`)

	path, err := Resolve(catalog, "success")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "data", "ok.json"), path)
}

func TestResolveAbsoluteCatalogEntry(t *testing.T) {
	dir := t.TempDir()
	abs := filepath.Join(dir, "elsewhere.json")
	catalog := writeFile(t, dir, "fixtures.toml", `
[datasets]
failure = "`+abs+`"
`)

	path, err := Resolve(catalog, "failure")
	require.NoError(t, err)
	require.Equal(t, abs, path)
}

func TestResolveFallback(t *testing.T) {
	path, err := Resolve("", "success")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("test_data", "success_data.json"), path)

	// A catalog without the entry falls back too.
	catalog := writeFile(t, t.TempDir(), "fixtures.toml", `
[datasets]
other = "other.json"
`)
	path, err = Resolve(catalog, "success")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("test_data", "success_data.json"), path)

	// So does a catalog path that does not exist.
	path, err = Resolve(filepath.Join(t.TempDir(), "absent.toml"), "success")
	require.NoError(t, err)
	require.Equal(t, filepath.Join("test_data", "success_data.json"), path)
}

func TestResolveBadCatalog(t *testing.T) {
	catalog := writeFile(t, t.TempDir(), "fixtures.toml", `not toml at all = = =`)
	_, err := Resolve(catalog, "success")
	require.Error(t, err)
}
