package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("OCR_ENABLED", "false")
	t.Setenv("LEDGER_REFERENCE_YEAR", "2025")

	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestVocabAddThenList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_categories.yaml")

	out, _, err := run(t, "vocab", "add", "--vocab-path", path, "Foo Mart", "Shopping")
	require.NoError(t, err)
	assert.Equal(t, "Foo Mart -> Shopping\n", out)

	out, _, err = run(t, "vocab", "list", "--vocab-path", path)
	require.NoError(t, err)
	assert.Contains(t, out, "MERCHANT")
	assert.Contains(t, out, "foo mart")
	assert.Contains(t, out, "Shopping")
}

func TestVocabAdd_UnknownCategory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendor_categories.yaml")

	_, _, err := run(t, "vocab", "add", "--vocab-path", path, "Foo Mart", "Crypto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown category")

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "nothing persisted")
}

func TestParse_CSVStatement(t *testing.T) {
	dir := t.TempDir()
	vocab := filepath.Join(dir, "vendor_categories.yaml")
	require.NoError(t, os.WriteFile(vocab, []byte("netflix: Entertainment\n"), 0644))
	statement := filepath.Join(dir, "icici.csv")
	require.NoError(t, os.WriteFile(statement, []byte("Date,Description,Amount\n01/08/2025,Netflix,649.00\n"), 0644))

	out, stderr, err := run(t, "parse", "--vocab-path", vocab, "--account", "ICICI", statement)
	require.NoError(t, err)
	assert.Equal(t, "Date,Merchant,Amount,Type,Account,Category\n01/08/2025,Netflix,649.00,DEBIT,ICICI,Entertainment\n", out)
	assert.Contains(t, stderr, "OK      icici.csv [ICICI]: 1 transactions")
}

func TestParse_AllFailed(t *testing.T) {
	_, stderr, err := run(t, "parse", "--vocab-backend", "memory", filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Contains(t, stderr, "FAILED  missing.pdf")
}

func TestParse_XLSXOutput(t *testing.T) {
	dir := t.TempDir()
	statement := filepath.Join(dir, "hdfc.csv")
	require.NoError(t, os.WriteFile(statement, []byte("Date,Description,Amount\n01/08/2025,SWIGGY,452.00\n"), 0644))
	output := filepath.Join(dir, "ledger.xlsx")

	_, _, err := run(t, "parse", "--vocab-backend", "memory", "--output", output, statement)
	require.NoError(t, err)

	info, err := os.Stat(output)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAccountFor(t *testing.T) {
	assert.Equal(t, "ICICI", accountFor([]string{"HDFC", "ICICI"}, 1, "b.pdf"))
	assert.Equal(t, "HDFC", accountFor([]string{"HDFC"}, 3, "d.pdf"))
	assert.Equal(t, "aug", accountFor(nil, 0, "/tmp/statements/aug.pdf"))
}

func TestCloseAfterRun_ClosesOnError(t *testing.T) {
	app := &appContext{}
	closed := 0

	root := &cobra.Command{Use: "root", SilenceUsage: true, SilenceErrors: true}
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			app.closers = append(app.closers, func() { closed++ })
			return errors.New("boom")
		},
	})
	closeAfterRun(root, app)

	root.SetArgs([]string{"fail"})
	require.Error(t, root.Execute())
	assert.Equal(t, 1, closed)
	assert.Empty(t, app.closers)
}
