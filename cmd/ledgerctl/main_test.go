package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const ledgerDocument = `{
  "accounts": [
    {"id": "1", "name": "Main", "balance": 700, "openingBalance": 0, "isActive": true}
  ],
  "categories": [
    {"id": "2", "name": "Groceries", "type": "expense"},
    {"id": "3", "name": "Salary", "type": "income"}
  ],
  "operations": [
    {"id": "10", "type": "income", "amount": 1000, "accountId": "1", "categoryId": "3", "date": "2024-03-01"},
    {"id": "11", "type": "expense", "amount": 250, "accountId": "1", "categoryId": "2", "date": "2024-03-02"}
  ],
  "budgets": [
    {"id": "4", "categoryId": "2", "month": "2024-03", "limit": 200}
  ]
}`

// run executes ledgerctl against the SQLite database at dbPath.
func run(t *testing.T, dbPath, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db-driver", "sqlite", "--db-path", dbPath, "--currency", "USD"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestImportReportReconcile(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "ledger.db")
	docPath := filepath.Join(dir, "ledger.json")
	require.NoError(t, os.WriteFile(docPath, []byte(ledgerDocument), 0o600))

	out, err := run(t, dbPath, "", "import", docPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 accounts, 2 categories, 2 operations, 1 budgets")
	assert.Contains(t, out, "Restated Main: $700.00 -> $750.00")

	out, err = run(t, dbPath, "", "progress", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "125.0%")
	assert.Contains(t, out, "over")

	out, err = run(t, dbPath, "", "summary", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "$750.00")
	assert.Contains(t, out, "$250.00")

	out, err = run(t, dbPath, "", "reconcile")
	require.NoError(t, err)
	assert.Contains(t, out, "all balances consistent")

	out, err = run(t, dbPath, "", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing seeded")
}

func TestExportToStdout(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	_, err := run(t, dbPath, "", "seed")
	require.NoError(t, err)

	out, err := run(t, dbPath, "", "export")
	require.NoError(t, err)
	assert.Contains(t, out, `"Main account"`)
	assert.Contains(t, out, `"Groceries"`)

	_, err = run(t, dbPath, out, "import", "-")
	require.NoError(t, err)
}

func TestProgressRejectsBadMonth(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "ledger.db")

	_, err := run(t, dbPath, "", "progress", "March")
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	out, err := run(t, filepath.Join(t.TempDir(), "unused.db"), "s3cret\n", "hash-password")
	require.NoError(t, err)

	hash := strings.TrimSpace(out)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))

	_, err = run(t, filepath.Join(t.TempDir(), "unused.db"), "", "hash-password")
	assert.Error(t, err)
}
