package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Owhab/nexacms-sub003/internal/migration"
	"github.com/Owhab/nexacms-sub003/internal/sections"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTypesCommand(t *testing.T) {
	out, err := execute(t, "", "types", "--category", "hero", "-o", "json")
	require.NoError(t, err)

	var list []sections.Descriptor
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	assert.Len(t, list, len(sections.HeroVariants()))

	out, err = execute(t, "", "types")
	require.NoError(t, err)
	assert.Contains(t, out, "hero-split-screen")
	assert.Contains(t, out, "paragraph")
}

func TestRecommendCommandReadsStdin(t *testing.T) {
	out, err := execute(t, `{"title":"Hi","backgroundImage":"/a.jpg"}`, "recommend", "-", "-o", "json")
	require.NoError(t, err)

	var recs []migration.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.NotEmpty(t, recs)
	assert.Equal(t, sections.VariantSplitScreen, recs[0].Variant)
}

func TestMigrateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hero.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"title":"Welcome","customCss":".x{}"}`), 0o600))

	out, err := execute(t, "", "migrate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Migration to hero-centered succeeded")
	assert.Contains(t, out, "warning:")

	out, err = execute(t, "", "migrate", path, "--target", "video")
	require.Error(t, err)
	assert.Contains(t, out, "video.url is required")

	_, err = execute(t, "", "migrate", path, "--target", "video", "--no-validate")
	require.NoError(t, err)

	out, err = execute(t, "", "migrate", path, "--target", "video", "--preview")
	require.NoError(t, err)
	assert.Contains(t, out, "suggested:")
}

func TestBatchCommand(t *testing.T) {
	input := `[
		{"id":"a","properties":{"title":"One"}},
		{"id":"b","properties":{"title":"Two"},"target_variant":"hero-video"}
	]`

	out, err := execute(t, input, "batch", "-")
	require.EqualError(t, err, "1 of 2 migrations failed")
	assert.Contains(t, out, "hero-video")

	out, err = execute(t, input, "batch", "-", "--no-validate", "-o", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "id: a")
}

func TestUnknownOutputFormat(t *testing.T) {
	_, err := execute(t, "", "types", "-o", "xml")
	assert.EqualError(t, err, "unknown output format: xml")
}
