package reslist_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/reslist/pkg/reslist"
)

func sidebar() []*reslist.Resource {
	return []*reslist.Resource{
		{Name: "(Tiltfile)", Index: 0},
		{Name: "vigoda", HasAlert: true, Index: 1},
		{Name: "snack", Index: 2},
		{Name: "beep", Index: 3},
		{Name: "boop", HasAlert: true, Index: 4},
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "resources.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestProject_NoOptions(t *testing.T) {
	result := reslist.Project(sidebar())

	assert.Equal(t, []string{"(Tiltfile)", "vigoda", "snack", "beep", "boop"}, result.Names)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 2, result.Alerts)
	assert.False(t, result.NoMatches)
}

func TestProject_AlertsOnTop(t *testing.T) {
	result := reslist.Project(sidebar(), reslist.WithAlertsOnTop(true))
	assert.Equal(t, []string{"vigoda", "boop", "(Tiltfile)", "snack", "beep"}, result.Names)
}

func TestProject_NameFilter(t *testing.T) {
	result := reslist.Project(sidebar(), reslist.WithNameFilter("  B  p "))
	assert.Equal(t, []string{"beep", "boop"}, result.Names)
	assert.Equal(t, "  B  p ", result.Options.ResourceNameFilter)
}

func TestProject_NoMatches(t *testing.T) {
	result := reslist.Project(sidebar(), reslist.WithNameFilter("asdfawfwef"))

	require.NotNil(t, result.Resources)
	assert.Empty(t, result.Resources)
	assert.True(t, result.NoMatches)
}

func TestProject_EmptyInput(t *testing.T) {
	result := reslist.Project(nil)

	require.NotNil(t, result.Resources)
	assert.Empty(t, result.Names)
	assert.False(t, result.NoMatches)
}

func TestProject_WithOptionsThenOverride(t *testing.T) {
	result := reslist.Project(sidebar(),
		reslist.WithOptions(reslist.Options{ResourceNameFilter: "o", AlertsOnTop: false}),
		reslist.WithAlertsOnTop(true),
	)

	assert.Equal(t, []string{"vigoda", "boop"}, result.Names)
	assert.True(t, result.Options.AlertsOnTop)
}

func TestProject_DoesNotModifyInput(t *testing.T) {
	input := sidebar()
	_ = reslist.Project(input, reslist.WithAlertsOnTop(true), reslist.WithNameFilter("o"))

	names := make([]string, 0, len(input))
	for _, r := range input {
		names = append(names, r.Name)
	}

	assert.Equal(t, []string{"(Tiltfile)", "vigoda", "snack", "beep", "boop"}, names)
}

func TestProjectFile_Snapshot(t *testing.T) {
	path := writeFile(t, `resources:
  - name: api
    labels: {tier: backend}
  - name: web
    runtimeStatus: error
    labels: {tier: frontend}
  - name: worker
    buildStatus: error
    labels: {tier: backend}
`)

	result, err := reslist.ProjectFile(context.Background(), path, reslist.WithAlertsOnTop(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"web", "worker", "api"}, result.Names)

	result, err = reslist.ProjectFile(context.Background(), path,
		reslist.WithSelector("tier=backend"), reslist.WithAlertsOnTop(true))
	require.NoError(t, err)
	assert.Equal(t, []string{"worker", "api"}, result.Names)
	assert.Equal(t, 2, result.Total)
}

func TestProjectFile_EmptyPath(t *testing.T) {
	_, err := reslist.ProjectFile(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be empty")
}

func TestProjectFile_Missing(t *testing.T) {
	_, err := reslist.ProjectFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading resource source")
}

func TestProjectFile_InvalidSelector(t *testing.T) {
	path := writeFile(t, "resources: []\n")

	_, err := reslist.ProjectFile(context.Background(), path, reslist.WithSelector("tier"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid label selector")
}

func ExampleProject() {
	resources := []*reslist.Resource{
		{Name: "(Tiltfile)"},
		{Name: "vigoda", HasAlert: true},
		{Name: "snack"},
		{Name: "beep"},
		{Name: "boop", HasAlert: true},
	}

	result := reslist.Project(resources, reslist.WithAlertsOnTop(true))
	fmt.Println(result.Names)
	// Output: [vigoda boop (Tiltfile) snack beep]
}
