package upload

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledger = "amount,payment_format\n10,wire\n"

func entries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	list, err := os.ReadDir(dir)
	require.NoError(t, err)
	return list
}

func TestAllowedFile(t *testing.T) {
	assert.True(t, AllowedFile("ledger.csv"))
	assert.True(t, AllowedFile("LEDGER.CSV"))
	assert.False(t, AllowedFile("ledger.xlsx"))
	assert.False(t, AllowedFile("ledger"))
	assert.False(t, AllowedFile("csv"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "ledger.csv", Sanitize("ledger.csv"))
	assert.Equal(t, "passwd.csv", Sanitize("../../etc/passwd.csv"))
	assert.Equal(t, "evil.csv", Sanitize(`C:\Users\me\evil.csv`))
	assert.Equal(t, "my_ledger__1_.csv", Sanitize("my ledger (1).csv"))
	assert.Equal(t, "hidden.csv", Sanitize(".hidden.csv"))
	assert.Equal(t, "upload.csv", Sanitize(""))
}

func TestStage(t *testing.T) {
	dir := t.TempDir()
	s, err := Stage(dir, "my ledger.csv", strings.NewReader(ledger), 0)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(s.Path))
	assert.True(t, strings.HasSuffix(s.Path, "-my_ledger.csv"))
	assert.Equal(t, "my_ledger.csv", s.Name)
	assert.Equal(t, int64(len(ledger)), s.Size)

	sum := sha256.Sum256([]byte(ledger))
	assert.Equal(t, hex.EncodeToString(sum[:]), s.SHA256)

	data, err := os.ReadFile(s.Path)
	require.NoError(t, err)
	assert.Equal(t, ledger, string(data))

	require.NoError(t, s.Remove())
	require.NoError(t, s.Remove())
	assert.Empty(t, entries(t, dir))
}

func TestStage_UniqueNames(t *testing.T) {
	dir := t.TempDir()
	a, err := Stage(dir, "x.csv", strings.NewReader(ledger), 0)
	require.NoError(t, err)
	b, err := Stage(dir, "x.csv", strings.NewReader(ledger), 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.Path, b.Path)
}

func TestStage_Rejections(t *testing.T) {
	dir := t.TempDir()

	_, err := Stage(dir, "", strings.NewReader(ledger), 0)
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = Stage(dir, "ledger.txt", strings.NewReader(ledger), 0)
	assert.ErrorIs(t, err, ErrNotCSV)

	assert.Empty(t, entries(t, dir))
}

func TestStage_TooLarge(t *testing.T) {
	dir := t.TempDir()
	_, err := Stage(dir, "big.csv", strings.NewReader(ledger), 5)
	var tl *TooLargeError
	require.True(t, errors.As(err, &tl))
	assert.Equal(t, int64(5), tl.Limit)
	assert.Empty(t, entries(t, dir))

	s, err := Stage(dir, "exact.csv", strings.NewReader(ledger), int64(len(ledger)))
	require.NoError(t, err)
	assert.Equal(t, int64(len(ledger)), s.Size)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStage_ReadErrorCleansUp(t *testing.T) {
	dir := t.TempDir()
	_, err := Stage(dir, "ledger.csv", brokenReader{}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Empty(t, entries(t, dir))
}

func TestWith_RemovesOnSuccess(t *testing.T) {
	dir := t.TempDir()
	var seen string
	err := With(dir, "ledger.csv", strings.NewReader(ledger), 0, func(s *Staged) error {
		seen = s.Path
		_, statErr := os.Stat(s.Path)
		return statErr
	})
	require.NoError(t, err)
	assert.NotEmpty(t, seen)
	assert.Empty(t, entries(t, dir))
}

func TestWith_RemovesOnError(t *testing.T) {
	dir := t.TempDir()
	boom := errors.New("schema mismatch")
	err := With(dir, "ledger.csv", strings.NewReader(ledger), 0, func(*Staged) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, entries(t, dir))
}

func TestWith_RemovesOnPanic(t *testing.T) {
	dir := t.TempDir()
	assert.Panics(t, func() {
		_ = With(dir, "ledger.csv", strings.NewReader(ledger), 0, func(*Staged) error {
			panic("pipeline exploded")
		})
	})
	assert.Empty(t, entries(t, dir))
}

func TestWith_StageErrorSkipsFn(t *testing.T) {
	called := false
	err := With(t.TempDir(), "ledger.pdf", strings.NewReader(ledger), 0, func(*Staged) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotCSV)
	assert.False(t, called)
}
