package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dmitrijs2005/projdash/internal/common"
	"github.com/dmitrijs2005/projdash/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	t    *testing.T
	base []string
}

func newFileHarness(t *testing.T) *harness {
	return &harness{t: t, base: []string{"--env-file", "", "--backend", "file", "--data-dir", filepath.Join(t.TempDir(), "data")}}
}

// run executes projdashctl with stdin and returns stdout.
func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	var out, errOut bytes.Buffer
	err := Run(context.Background(), append(append([]string{}, args...), h.base...), strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func (h *harness) mustRun(stdin string, args ...string) string {
	h.t.Helper()
	out, err := h.run(stdin, args...)
	require.NoError(h.t, err)
	return out
}

func writePNG(t *testing.T, dir string) (string, []byte) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 3))))
	path := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path, buf.Bytes()
}

func TestCLI_UserAndProjects(t *testing.T) {
	h := newFileHarness(t)

	id := strings.TrimSpace(h.mustRun("secret\n", "user", "register", "--login", "alice", "--display-name", "Alice", "--password-stdin"))
	assert.NotEmpty(t, id)

	_, err := h.run("other\n", "user", "register", "--login", "alice", "--password-stdin")
	require.ErrorIs(t, err, common.ErrorAlreadyExists)

	token := strings.TrimSpace(h.mustRun("secret\n", "user", "login", "--login", "alice", "--password-stdin"))
	assert.Equal(t, 2, strings.Count(token, "."))

	_, err = h.run("wrong\n", "user", "login", "--login", "alice", "--password-stdin")
	require.ErrorIs(t, err, common.ErrorUnauthorized)

	pid := strings.TrimSpace(h.mustRun("", "project", "add", "--user", "alice", "--name", "site", "--category", "web", "--description", "d"))
	assert.NotEmpty(t, pid)

	table := h.mustRun("", "project", "list", "--user", "alice")
	assert.Contains(t, table, "NAME")
	assert.Contains(t, table, "site")

	h.mustRun("", "project", "update", pid, "--name", "X")

	var list []models.Project
	require.NoError(t, json.Unmarshal([]byte(h.mustRun("", "project", "list", "--user", "alice", "--json")), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "X", list[0].Name)
	assert.Equal(t, "d", list[0].Description)
	assert.Equal(t, id, list[0].UserID)

	_, err = h.run("", "project", "update", pid)
	require.ErrorContains(t, err, "nothing to update")

	report := filepath.Join(t.TempDir(), "out.pdf")
	h.mustRun("", "project", "export", "--user", "alice", "-o", report)
	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	h.mustRun("", "project", "delete", pid)
	h.mustRun("", "project", "delete", pid)
	assert.JSONEq(t, `[]`, h.mustRun("", "project", "list", "--user", "alice", "--json"))
}

func TestCLI_UnknownUser(t *testing.T) {
	h := newFileHarness(t)
	_, err := h.run("", "project", "list", "--user", "ghost")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCLI_Picture(t *testing.T) {
	h := newFileHarness(t)
	h.mustRun("pw\n", "user", "register", "--login", "alice", "--password-stdin")

	_, err := h.run("", "picture", "get", "--user", "alice")
	require.ErrorIs(t, err, common.ErrorNotFound)

	path, pic := writePNG(t, t.TempDir())
	h.mustRun("", "picture", "set", "--user", "alice", path)

	assert.Equal(t, string(pic), h.mustRun("", "picture", "get", "--user", "alice"))

	out := filepath.Join(t.TempDir(), "got.png")
	h.mustRun("", "picture", "get", "--user", "alice", "-o", out)
	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, pic, got)
}

func TestCLI_RegisterWithPicture(t *testing.T) {
	h := newFileHarness(t)
	path, pic := writePNG(t, t.TempDir())

	h.mustRun("pw\n", "user", "register", "--login", "bob", "--mode", "team", "--picture", path, "--password-stdin")
	assert.Equal(t, string(pic), h.mustRun("", "picture", "get", "--user", "bob"))
}

func TestCLI_SQLiteMigrate(t *testing.T) {
	h := &harness{t: t, base: []string{"--env-file", "", "--backend", "sqlite", "--sqlite-path", filepath.Join(t.TempDir(), "p.db")}}

	assert.Contains(t, h.mustRun("", "migrate"), "migrations applied (sqlite)")
	h.mustRun("pw\n", "user", "register", "--login", "alice", "--password-stdin")
	h.mustRun("", "project", "add", "--user", "alice", "--name", "one")
	assert.Contains(t, h.mustRun("", "project", "list", "--user", "alice"), "one")
}

func TestCLI_ConfigErrors(t *testing.T) {
	h := &harness{t: t, base: []string{"--env-file", "", "--backend", "mongo"}}
	_, err := h.run("", "migrate")
	require.ErrorContains(t, err, "config error")

	h = &harness{t: t, base: []string{"--env-file", "", "-c", filepath.Join(t.TempDir(), "missing.yaml")}}
	_, err = h.run("", "migrate")
	require.ErrorContains(t, err, "config error")
}

func TestGetPassword(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()

	readPassword = func(int) ([]byte, error) { return []byte("typed"), nil }
	var w bytes.Buffer
	pw, err := getPassword(strings.NewReader(""), &w, false)
	require.NoError(t, err)
	assert.Equal(t, "typed", string(pw))
	assert.Contains(t, w.String(), "Enter password")

	readPassword = func(int) ([]byte, error) { return nil, errors.New("boom") }
	_, err = getPassword(strings.NewReader(""), &w, false)
	require.Error(t, err)

	pw, err = getPassword(strings.NewReader("last"), &w, true)
	require.NoError(t, err)
	assert.Equal(t, "last", string(pw))

	_, err = getPassword(strings.NewReader(""), &w, true)
	require.Error(t, err)
}
