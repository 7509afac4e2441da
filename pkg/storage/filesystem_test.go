package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveOpenDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	n, err := store.Save("submissions/a/answer.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	file, err := store.Open("submissions/a/answer.txt")
	require.NoError(t, err)
	data, err := io.ReadAll(file)
	require.NoError(t, file.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	require.NoError(t, store.Delete("submissions/a/answer.txt"))
	_, err = store.Open("submissions/a/answer.txt")
	assert.Error(t, err)
	assert.NoError(t, store.Delete("submissions/a/answer.txt"))
}

func TestLocalStorageEnforcesLimit(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 4)
	require.NoError(t, err)

	_, err = store.Save("big.bin", strings.NewReader("12345"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
	_, err = store.Open("big.bin")
	assert.Error(t, err)

	n, err := store.Save("ok.bin", strings.NewReader("1234"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestLocalStorageRejectsEscapes(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = store.Save("../outside.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidPath)
	_, err = store.Open("/etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidPath)
}
