package cli_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seo-optimizer/contentgate/cli"
	"github.com/seo-optimizer/contentgate/config"
	"github.com/seo-optimizer/contentgate/lexicon"
)

func stuffedFile(t *testing.T) string {
	t.Helper()
	words := make([]string, 30)
	for i := range words {
		if i%2 == 0 && i < 24 {
			words[i] = "pesca"
		} else {
			words[i] = "agua"
		}
	}
	path := filepath.Join(t.TempDir(), "article.md")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(words, " ")+"."), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := cli.NewRootCmdForTest()
	stdout, stderr := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "contentgate dev")
}

func TestEvaluateCommand_JSON(t *testing.T) {
	out, _, err := run(t, "evaluate", stuffedFile(t), "--keyword", "pesca", "--json")

	require.Error(t, err, "critical issues fail the gate")
	assert.Contains(t, err.Error(), "critical issue")

	var res map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, false, res["canProceed"])
	assert.Equal(t, false, res["readyForTranslation"])
	assert.Contains(t, out, `"keyword_density_high"`)
}

func TestEvaluateCommand_Report(t *testing.T) {
	out, _, err := run(t, "evaluate", stuffedFile(t), "--keyword", "pesca")
	require.Error(t, err)
	assert.Contains(t, out, "contentgate")
	assert.Contains(t, out, "CRITICAL")
}

func TestEvaluateCommand_MinScoreWithRelaxedPolicy(t *testing.T) {
	dir := t.TempDir()
	policy := filepath.Join(dir, "policy.yaml")
	require.NoError(t, os.WriteFile(policy, []byte(`
length:
  optimal: 6
  acceptable: 3
headings:
  min_h2: 0
  good_h2: 0
  good_total: 0
media:
  min_links: 0
  min_images: 0
`), 0o600))
	article := filepath.Join(dir, "a.md")
	require.NoError(t, os.WriteFile(article, []byte("El río baja con agua clara y fría."), 0o600))

	_, _, err := run(t, "evaluate", article, "--policy", policy, "--min-score", "0")
	require.NoError(t, err)

	_, _, err = run(t, "evaluate", article, "--policy", policy, "--min-score", "100")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below minimum 100")
}

func TestEvaluateCommand_Stdin(t *testing.T) {
	cmd := cli.NewRootCmdForTest()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{"evaluate", "-", "--json"})

	require.Error(t, cmd.Execute())
	assert.Contains(t, out.String(), `"score": 15`)
}

func TestEvaluateCommand_Errors(t *testing.T) {
	_, _, err := run(t, "evaluate", filepath.Join(t.TempDir(), "missing.md"))
	assert.ErrorContains(t, err, "reading content")

	_, _, err = run(t, "evaluate")
	assert.Error(t, err)

	_, _, err = run(t, "evaluate", stuffedFile(t), "--policy", filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorContains(t, err, "reading policy")
}

func TestFixCommand_Stdout(t *testing.T) {
	path := stuffedFile(t)
	out, summary, err := run(t, "fix", path, "--keyword", "pesca")

	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "pesca"))
	assert.Contains(t, summary, "12 → 6 occurrences (max 6)")
	assert.Contains(t, summary, "score after fixes")

	orig, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 12, strings.Count(string(orig), "pesca"), "file untouched without --write")
}

func TestFixCommand_Write(t *testing.T) {
	path := stuffedFile(t)
	out, _, err := run(t, "fix", path, "--keyword", "pesca", "--max", "3", "--alternatives", "la captura", "--write")

	require.NoError(t, err)
	assert.Contains(t, out, "target reached")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(string(data), "pesca"))
	assert.Equal(t, 9, strings.Count(string(data), "la captura"))
}

func TestFixCommand_ExplicitZeroMax(t *testing.T) {
	out, summary, err := run(t, "fix", stuffedFile(t), "--keyword", "pesca", "--max", "0", "--alternatives", "la captura")

	require.NoError(t, err)
	assert.Zero(t, strings.Count(out, "pesca"))
	assert.Contains(t, summary, "12 → 0 occurrences (max 0)")
}

func TestFixCommand_SplitsParagraphs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.md")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("Una frase corta con cinco palabras. ", 10)), 0o600))

	out, _, err := run(t, "fix", path, "--max-words", "12")
	require.NoError(t, err)
	for _, p := range strings.Split(out, "\n\n") {
		assert.LessOrEqual(t, len(strings.Fields(p)), 12)
	}
}

func TestFixCommand_Validation(t *testing.T) {
	_, _, err := run(t, "fix", "-", "--write")
	assert.ErrorContains(t, err, "--write needs a file")

	_, _, err = run(t, "fix", stuffedFile(t), "--max", "-1")
	assert.ErrorContains(t, err, "must not be negative")
}

func TestLexiconCommand(t *testing.T) {
	out, _, err := run(t, "lexicon")
	require.NoError(t, err)
	for _, c := range lexicon.Default().Categories {
		assert.Contains(t, out, c.Name)
	}

	out, _, err = run(t, "lexicon", "--json")
	require.NoError(t, err)
	var lex lexicon.Lexicon
	require.NoError(t, json.Unmarshal([]byte(out), &lex))
	assert.Equal(t, lexicon.Default(), lex)
}

func TestServeCommand_StopsWhenContextEnds(t *testing.T) {
	dataDir := t.TempDir()
	for _, k := range []string{
		config.EnvGinMode, config.EnvDevMode, config.EnvPolicyFile, config.EnvLexiconFile,
		config.EnvRateLimitRPS, config.EnvRateLimitBurst, config.EnvCacheTTL, config.EnvCacheMaxEntries,
	} {
		t.Setenv(k, "")
	}
	t.Setenv(config.EnvPort, "0")
	t.Setenv(config.EnvDataDir, dataDir)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := cli.NewRootCmdForTest()
	cmd.SetArgs([]string{"serve", "--env-dir", t.TempDir()})
	require.NoError(t, cmd.ExecuteContext(ctx))

	assert.FileExists(t, filepath.Join(dataDir, "statistics.json"))
}

func TestServeCommand_InvalidEnvironment(t *testing.T) {
	t.Setenv(config.EnvRateLimitRPS, "fast")

	cmd := cli.NewRootCmdForTest()
	cmd.SetArgs([]string{"serve", "--env-dir", t.TempDir()})
	assert.ErrorContains(t, cmd.ExecuteContext(context.Background()), "invalid environment")
}
