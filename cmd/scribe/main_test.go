package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"ariga.io/atlas/sql/migrate"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/scribe"
	"github.com/syssam/scribe/gen"
)

func init() {
	// Deterministic output regardless of the test terminal.
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return buf.String(), err
}

const schemaYAML = `
tables:
  - name: users
    columns:
      - name: id
        type: pk
      - name: name
        type: string
`

func writeSchema(t *testing.T) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(file, []byte(schemaYAML), 0o644))
	return file
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "scribe version "+scribe.Version)
	assert.Contains(t, out, "Go Version:")
}

func TestGenerateCmd(t *testing.T) {
	schema := writeSchema(t)
	target := filepath.Join(t.TempDir(), "out")

	out, err := execute(t, "generate", "--schema", schema, "--target", target, "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote artifacts to "+target)

	_, err = os.Stat(filepath.Join(target, "migrations", "sqlite.sql"))
	require.NoError(t, err)
	src, err := os.ReadFile(filepath.Join(target, "out.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), "package out")
	assert.Regexp(t, `UserTable\s+= "users"`, string(src))
}

func TestGenerateCmdEnvBinding(t *testing.T) {
	schema := writeSchema(t)
	target := filepath.Join(t.TempDir(), "out")
	t.Setenv("SCRIBE_TARGET", target)
	t.Setenv("SCRIBE_DIALECT", "sqlite")
	t.Setenv("SCRIBE_PACKAGE", "blog")

	_, err := execute(t, "generate", "--schema", schema)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(target, "blog.go"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(target, "migrations", "sqlite.sql"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(target, "migrations", "mysql.sql"))
	require.Error(t, err, "only the configured dialect is built")
}

func TestGenerateCmdMissingTarget(t *testing.T) {
	schema := writeSchema(t)
	t.Setenv("SCRIBE_TARGET", "")

	_, err := execute(t, "generate", "--schema", schema)
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
	assert.Contains(t, err.Error(), "Target")
}

func TestMigrateCmds(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "20240101000000_init.sql")
	require.NoError(t, os.WriteFile(file, []byte("CREATE TABLE t (id int);\n"), 0o644))

	// Status before hashing reports the missing checksum file.
	_, err := execute(t, "migrate", "status", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum file missing")

	out, err := execute(t, "migrate", "hash", dir)
	require.NoError(t, err)
	assert.Contains(t, out, migrate.HashFileName)
	_, err = os.Stat(filepath.Join(dir, migrate.HashFileName))
	require.NoError(t, err)

	out, err = execute(t, "migrate", "status", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "20240101000000")
	assert.Contains(t, out, "checksum ok")

	// A file the checksum does not cover fails validation.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20240102000000_sneaky.sql"), []byte("DROP TABLE t;\n"), 0o644))
	_, err = execute(t, "migrate", "status", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")
}

func TestMigrateStatusMissingDir(t *testing.T) {
	_, err := execute(t, "migrate", "status", filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
