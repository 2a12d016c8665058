package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookstore-ledger/internal/domain/inventory"
	"github.com/xiebiao/bookstore-ledger/pkg/jwt"
)

// run 执行一次命令,返回stdout
func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config-dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("BOOKSTORE_DATABASE_DRIVER", "sqlite")
	t.Setenv("BOOKSTORE_DATABASE_DSN", "file:"+filepath.Join(dir, "ledger.db")+"?_busy_timeout=5000")
	t.Setenv("BOOKSTORE_LOG_LEVEL", "error")
	t.Setenv("BOOKSTORE_SERVER_MODE", "test")
	return dir
}

func TestLedgerctl_CatalogCommands(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, dir, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "迁移完成")

	_, err = run(t, dir, "publish", "978-0-13-235088-4",
		"--title", "Clean Code", "--year", "2008", "--price", "29.99", "--stock", "10")
	require.NoError(t, err)

	out, err = run(t, dir, "restock", "9780132350884", "--added", "5", "--ref", "PO-9")
	require.NoError(t, err)
	var inv struct {
		Quantity  int `json:"quantity"`
		Available int `json:"available"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &inv))
	assert.Equal(t, 15, inv.Quantity)
	assert.Equal(t, 15, inv.Available)

	effective := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	out, err = run(t, dir, "set-price", "9780132350884", "34.50", "--effective-at", effective)
	require.NoError(t, err)
	assert.Contains(t, out, `"unit_price": "34.50"`)

	_, err = run(t, dir, "restock", "9780000000000", "--added", "1")
	assert.ErrorIs(t, err, inventory.ErrInventoryNotFound)

	_, err = run(t, dir, "set-price", "9780132350884", "abc")
	assert.Error(t, err)
}

func TestLedgerctl_Token(t *testing.T) {
	dir := setupEnv(t)

	out, err := run(t, dir, "token", "--user", "7", "--role", jwt.RoleAdmin)
	require.NoError(t, err)

	var pair jwt.TokenPair
	require.NoError(t, json.Unmarshal([]byte(out), &pair))

	m := jwt.NewManager("your-secret-key-change-in-production", 0, 0)
	claims, err := m.ParseToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.True(t, claims.IsAdmin())

	_, err = run(t, dir, "token")
	assert.Error(t, err, "--user必填")
}
