package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/injurylens/internal/hcladapter"
)

// SafeBuffer is a thread-safe buffer for capturing interleaved REPL and log
// output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

const injuriesCSV = `trmt_date,age,sex,race,body_part,diag,location,prod,weight,narrative
2017-01-03,4,male,white,head,fracture,home,100,14.5,4YOM FELL FROM BUNK BED
2017-02-11,9,female,white,arm,contusion,school,100,3.2,9YOF BUMPED ARM ON BUNK BED LADDER
2017-03-20,82,female,black,hand,laceration,home,200,6.0,82YOF CUT HAND ON BROKEN TOILET
`

const productsCSV = `code,title
200,toilets
100,bunk beds
`

const populationCSV = `age,sex,n
4,male,2000000
9,female,1900000
`

const workspaceHCL = `
dataset "injuries" { path = "injuries.csv" }
dataset "products" { path = "products.csv" }
dataset "population" { path = "population.csv" }

view "diagnosis" {
  dimension = "diagnosis"
  top_n     = 3
}

narrative {
  seed = 42
}
`

// setupAppTest writes a full CSV workspace into a temp dir and constructs an
// App over it with logs captured.
func setupAppTest(t *testing.T) (*App, *SafeBuffer) {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"injuries.csv":   injuriesCSV,
		"products.csv":   productsCSV,
		"population.csv": populationCSV,
		"workspace.hcl":  workspaceHCL,
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	out := &SafeBuffer{}
	cfg, err := NewConfig(Config{
		WorkspacePath: filepath.Join(dir, "workspace.hcl"),
		LogFormat:     "text",
		LogLevel:      "error",
	})
	require.NoError(t, err)

	return NewApp(out, cfg, hcladapter.NewLoader()), out
}

func TestNewConfigRequiresWorkspacePath(t *testing.T) {
	_, err := NewConfig(Config{})
	assert.Error(t, err)
}

func TestNewAppPanicsOnBadWorkspace(t *testing.T) {
	cfg, err := NewConfig(Config{WorkspacePath: "does/not/exist"})
	require.NoError(t, err)
	assert.Panics(t, func() {
		NewApp(&SafeBuffer{}, cfg, hcladapter.NewLoader())
	})
}

func TestRunDrivesSessionFromCommands(t *testing.T) {
	app, out := setupAppTest(t)

	input := strings.Join([]string{
		"products",
		"tables",
		"select 200",
		"story",
		"mode rate",
		"plot",
		"quit",
	}, "\n") + "\n"

	require.NoError(t, app.Run(context.Background(), strings.NewReader(input)))
	got := out.String()

	assert.Contains(t, got, "bunk beds", "catalog listing")
	assert.Contains(t, got, "fracture", "top-N table for the default selection")
	assert.Contains(t, got, "82YOF CUT HAND ON BROKEN TOILET", "story samples the new selection")
	assert.Contains(t, got, "no plottable cohorts",
		"rate mode omits cohorts without population rows")
}

func TestRunReportsEmptySelection(t *testing.T) {
	app, out := setupAppTest(t)

	input := "select 999\nstory\nquit\n"
	require.NoError(t, app.Run(context.Background(), strings.NewReader(input)))

	got := out.String()
	assert.Contains(t, got, "not in the catalog")
	assert.Contains(t, got, "no records match the current selection")
}
