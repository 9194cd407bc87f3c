package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/forgo/entityfactory/internal/database"
	"github.com/forgo/entityfactory/internal/model"
	"github.com/forgo/entityfactory/pkg/factory"
	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type output struct {
	Entity    string           `json:"entity"`
	Count     int              `json:"count"`
	Persisted bool             `json:"persisted"`
	Seed      uint64           `json:"seed"`
	Items     []map[string]any `json:"items"`
}

func runJSON(t *testing.T, args ...string) output {
	t.Helper()

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), args, &stdout, &stderr), stderr.String())

	var out output
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	return out
}

// ============================================================================
// Build
// ============================================================================

func TestRun_BuildToStdout(t *testing.T) {
	out := runJSON(t, "--entity", "basic", "--count", "2", "--seed", "7")

	assert.Equal(t, "basic", out.Entity)
	assert.Equal(t, 2, out.Count)
	assert.False(t, out.Persisted)
	assert.Equal(t, uint64(7), out.Seed)
	require.Len(t, out.Items, 2)
	assert.Empty(t, out.Items[0]["id"])
	assert.NotEmpty(t, out.Items[0]["my_string_attribute"])
}

func TestRun_SameSeedSameItems(t *testing.T) {
	a := runJSON(t, "-e", "user", "-n", "3", "--seed", "42")
	b := runJSON(t, "-e", "user", "-n", "3", "--seed", "42")

	for i := range a.Items {
		assert.Equal(t, a.Items[i]["email"], b.Items[i]["email"])
		assert.Equal(t, a.Items[i]["username"], b.Items[i]["username"])
	}
}

func TestRun_PersistInMemory(t *testing.T) {
	out := runJSON(t, "-e", "child", "-n", "2", "--persist")

	assert.True(t, out.Persisted)
	require.Len(t, out.Items, 2)
	assert.NotEmpty(t, out.Items[0]["id"])
	parent, ok := out.Items[0]["parent"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string value", parent["string_attribute"])
}

func TestRun_YAMLToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "unique.yaml")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-e", "unique", "-n", "3", "-f", "yml", "-o", path}, &stdout, &stderr)
	require.NoError(t, err)
	assert.Empty(t, stdout.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc struct {
		Count int              `yaml:"count"`
		Items []map[string]any `yaml:"items"`
	}
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, 3, doc.Count)
	assert.NotEqual(t, doc.Items[0]["unique_string"], doc.Items[1]["unique_string"])
}

func TestRun_PushesMetrics(t *testing.T) {
	var (
		mu    sync.Mutex
		paths []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	t.Setenv("FACTORY_PUSHGATEWAY_URL", srv.URL)

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-e", "basic", "-n", "2"}, &stdout, &stderr))
	assert.NotContains(t, stderr.String(), "failed to push metrics")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/metrics/job/fixturegen/kind/basic"}, paths)
}

// ============================================================================
// SQLite
// ============================================================================

func TestRun_PersistToSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.db")
	t.Setenv("FACTORY_SQLITE_PATH", path)

	out := runJSON(t, "--driver", "sqlite", "-e", "child", "-n", "3", "--persist")
	assert.Equal(t, 3, out.Count)

	db, err := database.OpenSQL(context.Background(), database.DriverSQLite, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	for table, want := range map[string]int{model.TableParentEntity: 3, model.TableChildEntity: 3} {
		var n int
		require.NoError(t, db.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
		assert.Equal(t, want, n, table)
	}
}

// ============================================================================
// Errors
// ============================================================================

func TestRun_UnknownEntity(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-e", "widget"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "basic, child, parent, unique, user")
}

func TestRun_CountMustBePositive(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-n", "0"}, &stdout, &stderr)
	assert.ErrorIs(t, err, factory.ErrInvalidArgument)
}

func TestRun_InvalidFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-f", "xml"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "FACTORY_EXPORT_FORMAT")
}

func TestRun_UnexpectedArgument(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"extra"}, &stdout, &stderr)
	assert.ErrorContains(t, err, "unexpected argument")
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--help"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "--entity")
	assert.Empty(t, stdout.String())
}
