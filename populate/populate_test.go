package populate_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/promptfill/config"
	"github.com/byte4ever/promptfill/placeholder"
	"github.com/byte4ever/promptfill/populate"
	"github.com/byte4ever/promptfill/table"
)

const validConfig = `{
	"company": "Initech",
	"ceo": "Bill Lumbergh",
	"competitors": ["Acme", "Globex"],
	"individuals": ["Milton", "Peter"]
}`

// writeTemp creates a temporary file with content and
// returns its path.
func writeTemp(
	tb testing.TB,
	dir string,
	name string,
	content string,
) string {
	tb.Helper()

	pa := filepath.Join(dir, name)
	require.NoError(tb, os.WriteFile(pa, []byte(content), 0o600))

	return pa
}

func readCSV(tb testing.TB, path string) [][]string {
	tb.Helper()

	fi, err := os.Open(path) //nolint:gosec // test file
	require.NoError(tb, err)

	defer func() {
		_ = fi.Close() //nolint:errcheck // test file
	}()

	recs, err := csv.NewReader(fi).ReadAll()
	require.NoError(tb, err)

	return recs
}

func seed(v int64) *int64 {
	return &v
}

func TestRun_populates_table(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	opts := populate.Options{
		ConfigPath: writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: writeTemp(t, dir, "t.csv",
			"\xef\xbb\xbfid,user input template,category\n"+
				"1,<ceo> leads <company>,exec\n"+
				"2,  Compare <company> with <competitor>  ,market\n"+
				"3,Quote <individual>,people\n",
		),
		OutPath: filepath.Join(dir, "out", "populated.csv"),
		Seed:    seed(42),
	}

	res, err := populate.Run(opts)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, opts.OutPath, res.Path)
	assert.Len(t, res.Digest, 64)

	recs := readCSV(t, opts.OutPath)
	require.Len(t, recs, 4)

	assert.Equal(
		t,
		[]string{
			"id", populate.TemplateColumn,
			populate.GeneratedColumn, "category",
		},
		recs[0],
	)

	// Template cells pass through untouched.
	assert.Equal(t, "  Compare <company> with <competitor>  ", recs[2][1])

	assert.Equal(t, "Bill Lumbergh leads Initech", recs[1][2])
	assert.Contains(
		t,
		[]string{"Compare Initech with Acme", "Compare Initech with Globex"},
		recs[2][2],
	)
	assert.Contains(
		t,
		[]string{"Quote Milton", "Quote Peter"},
		recs[3][2],
	)

	for _, rec := range recs[1:] {
		assert.Empty(t, placeholder.Names(rec[2]))
	}
}

func TestRun_reuses_existing_generated_column(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	opts := populate.Options{
		ConfigPath: writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: writeTemp(t, dir, "t.csv",
			"generated user input,user input template\n"+
				"stale,<company>\n",
		),
		OutPath: filepath.Join(dir, "out.csv"),
	}

	_, err := populate.Run(opts)
	require.NoError(t, err)

	assert.Equal(
		t,
		[][]string{
			{"generated user input", "user input template"},
			{"Initech", "<company>"},
		},
		readCSV(t, opts.OutPath),
	)
}

func TestRun_seed_gives_identical_output(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var sb strings.Builder

	sb.WriteString("user input template\n")

	for range 50 {
		sb.WriteString("<competitor> vs <competitor> with <individual>\n")
	}

	cfgPath := writeTemp(t, dir, "config.json", validConfig)
	tplPath := writeTemp(t, dir, "t.csv", sb.String())

	run := func(out string) []byte {
		_, err := populate.Run(populate.Options{
			ConfigPath:    cfgPath,
			TemplatesPath: tplPath,
			OutPath:       filepath.Join(dir, out),
			Seed:          seed(1234),
		})
		require.NoError(t, err)

		got, err := os.ReadFile(filepath.Join(dir, out)) //nolint:gosec // test file
		require.NoError(t, err)

		return got
	}

	first := run("a.csv")
	second := run("b.csv")

	assert.Equal(t, first, second)

	// With 50 rows of two draws each, both competitors
	// appear somewhere.
	assert.Contains(t, string(first), "Acme")
	assert.Contains(t, string(first), "Globex")
}

func TestRun_unsupported_placeholder_writes_nothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out", "populated.csv")

	_, err := populate.Run(populate.Options{
		ConfigPath: writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: writeTemp(t, dir, "t.csv",
			"user input template\n<company>\nAsk <unsupported>\n",
		),
		OutPath: out,
	})

	require.Error(t, err)
	require.ErrorIs(t, err, placeholder.ErrUnsupported)

	var rerr *populate.RowError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, 2, rerr.Row)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "<unsupported>")

	assert.NoFileExists(t, out)
	assert.NoDirExists(t, filepath.Dir(out))
}

func TestRun_blank_template_reports_row(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.csv")

	_, err := populate.Run(populate.Options{
		ConfigPath: writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: writeTemp(t, dir, "t.csv",
			"user input template\none\ntwo\n\" \"\nfour\n",
		),
		OutPath: out,
	})

	require.ErrorIs(t, err, table.ErrRowEmpty)

	var terr *table.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 3, terr.Row)
	assert.NoFileExists(t, out)
}

func TestRun_config_checked_before_templates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := populate.Run(populate.Options{
		ConfigPath: writeTemp(t, dir, "config.json", `{
			"company": "Initech",
			"ceo": "Bill Lumbergh",
			"competitors": ["Acme"]
		}`),
		// Does not exist; the config error must win.
		TemplatesPath: filepath.Join(dir, "missing.csv"),
		OutPath:       filepath.Join(dir, "out.csv"),
	})

	require.ErrorIs(t, err, config.ErrIncomplete)
	assert.Contains(t, err.Error(), "individuals")
}

func TestRun_missing_templates_file(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tplPath := filepath.Join(dir, "missing.csv")

	_, err := populate.Run(populate.Options{
		ConfigPath:    writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: tplPath,
		OutPath:       filepath.Join(dir, "out.csv"),
	})

	require.ErrorIs(t, err, table.ErrFileMissing)
	assert.Contains(t, err.Error(), tplPath)
}

func TestRun_missing_template_column(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := populate.Run(populate.Options{
		ConfigPath:    writeTemp(t, dir, "config.json", validConfig),
		TemplatesPath: writeTemp(t, dir, "t.csv", "prompt\nhi\n"),
		OutPath:       filepath.Join(dir, "out.csv"),
	})

	require.ErrorIs(t, err, table.ErrColumnMissing)
}

func TestRun_row_count_preserved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	var sb strings.Builder

	sb.WriteString("user input template,n\n")

	for idx := range 17 {
		sb.WriteString("Tell me about <company>,")
		sb.WriteString(strings.Repeat("x", idx))
		sb.WriteString("\n")
	}

	out := filepath.Join(dir, "out.csv")

	res, err := populate.Run(populate.Options{
		ConfigPath:    writeTemp(t, dir, "config.yaml", "company: Initech\nceo: Bill\ncompetitors: [Acme]\nindividuals: [Milton]\n"),
		TemplatesPath: writeTemp(t, dir, "t.csv", sb.String()),
		OutPath:       out,
	})
	require.NoError(t, err)

	assert.Equal(t, 17, res.Rows)
	assert.Len(t, readCSV(t, out), 18)
}
