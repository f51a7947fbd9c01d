package flatfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"contactbook/contact"
	"contactbook/flatfile"
)

func TestContactRepository_CreateContact(t *testing.T) {
	t.Run("appends one line per contact", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "data", "contacts.txt")
		repo := flatfile.NewContactRepository(path)

		// Act
		_, err := repo.CreateContact(context.Background(), contact.Contact{Name: "Ana García", Email: "ana.garcia@example.com"})
		require.NoError(t, err)
		_, err = repo.CreateContact(context.Background(), contact.Contact{Name: "Bob", Email: "bob@example.com"})
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "Ana García;ana.garcia@example.com\nBob;bob@example.com\n", readFile(t, path))
	})

	t.Run("returns the stored form without id", func(t *testing.T) {
		repo := flatfile.NewContactRepository(filepath.Join(t.TempDir(), "contacts.txt"))

		stored, err := repo.CreateContact(context.Background(), contact.Contact{ID: 9, Name: "Bob", Email: "bob@example.com"})

		require.NoError(t, err)
		assert.Equal(t, contact.Contact{Name: "Bob", Email: "bob@example.com"}, stored)
	})

	t.Run("fails when the file cannot be created", func(t *testing.T) {
		// Arrange
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))
		repo := flatfile.NewContactRepository(filepath.Join(blocker, "contacts.txt"))

		// Act
		_, err := repo.CreateContact(context.Background(), contact.Contact{Name: "Bob", Email: "bob@example.com"})

		// Assert
		assert.Error(t, err)
	})
}

func TestContactRepository_AllContacts(t *testing.T) {
	t.Run("returns empty list when the file does not exist", func(t *testing.T) {
		repo := flatfile.NewContactRepository(filepath.Join(t.TempDir(), "missing.txt"))

		contacts, err := repo.AllContacts(context.Background())

		require.NoError(t, err)
		assert.Empty(t, contacts)
	})

	t.Run("reads contacts in file order", func(t *testing.T) {
		path := writeFile(t, "Alice;alice@example.com\nBob;bob@example.com\n")
		repo := flatfile.NewContactRepository(path)

		contacts, err := repo.AllContacts(context.Background())

		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
		}, contacts)
	})

	t.Run("skips malformed lines and logs a warning", func(t *testing.T) {
		// Arrange
		path := writeFile(t, strings.Join([]string{
			"Alice;alice@example.com",
			"no separator",
			"too;many;fields",
			"",
			";blank@example.com",
			"Blank Email;",
			"Bob;bob@example.com",
		}, "\n")+"\n")
		core, logs := observer.New(zapcore.InfoLevel)
		repo := flatfile.NewContactRepository(path, flatfile.WithLogger(zap.New(core).Sugar()))

		// Act
		contacts, err := repo.AllContacts(context.Background())

		// Assert
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
		}, contacts)
		warnings := logs.FilterMessage("skipped malformed contact lines").All()
		require.Len(t, warnings, 1)
		assert.Equal(t, int64(5), warnings[0].ContextMap()["skipped"])
	})

	t.Run("accepts a last line without newline", func(t *testing.T) {
		repo := flatfile.NewContactRepository(writeFile(t, "Alice;alice@example.com"))

		contacts, err := repo.AllContacts(context.Background())

		require.NoError(t, err)
		assert.Len(t, contacts, 1)
	})

	t.Run("reads back a name longer than 64 KiB", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "contacts.txt")
		svc := contact.NewUsecase(flatfile.NewContactRepository(path))
		long := strings.Repeat("a", 70000)
		_, err := svc.AddContact(context.Background(), contact.Contact{Name: "Ana", Email: "ana@example.com"})
		require.NoError(t, err)
		_, err = svc.AddContact(context.Background(), contact.Contact{Name: long, Email: "long@example.com"})
		require.NoError(t, err)

		// Act
		contacts, err := svc.LoadContacts(context.Background())

		// Assert
		require.NoError(t, err)
		require.Len(t, contacts, 2)
		assert.Equal(t, "Ana", contacts[0].Name)
		assert.Equal(t, long, contacts[1].Name)
		assert.Equal(t, "long@example.com", contacts[1].Email)
	})

	t.Run("fails when the path is unreadable", func(t *testing.T) {
		repo := flatfile.NewContactRepository(t.TempDir())

		_, err := repo.AllContacts(context.Background())

		assert.Error(t, err)
	})
}

func TestContactRepository_DeleteContact(t *testing.T) {
	alice := contact.Contact{Name: "Alice", Email: "alice@example.com"}
	bob := contact.Contact{Name: "Bob", Email: "bob@example.com"}
	carol := contact.Contact{Name: "Carol", Email: "carol@example.com"}

	t.Run("rewrites the file from the remaining list", func(t *testing.T) {
		// Arrange
		path := writeFile(t, "Alice;alice@example.com\nBob;bob@example.com\nCarol;carol@example.com\n")
		repo := flatfile.NewContactRepository(path)

		// Act
		err := repo.DeleteContact(context.Background(), bob, []contact.Contact{alice, carol})

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Alice;alice@example.com\nCarol;carol@example.com\n", readFile(t, path))
		assertNoTempFiles(t, filepath.Dir(path))
	})

	t.Run("removing the last contact leaves an empty file", func(t *testing.T) {
		path := writeFile(t, "Alice;alice@example.com\n")
		repo := flatfile.NewContactRepository(path)

		err := repo.DeleteContact(context.Background(), alice, nil)

		require.NoError(t, err)
		assert.Equal(t, "", readFile(t, path))
	})
}

func TestContactRepository_WithUsecase(t *testing.T) {
	t.Run("round trips an added contact", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "contacts.txt")
		uc := contact.NewUsecase(flatfile.NewContactRepository(path))

		// Act
		_, err := uc.AddContact(context.Background(), contact.Contact{Name: "Ana  García", Email: "ana.garcia@example.com"})
		require.NoError(t, err)

		// Assert
		reloaded, err := contact.NewUsecase(flatfile.NewContactRepository(path)).LoadContacts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []contact.Contact{{Name: "Ana García", Email: "ana.garcia@example.com"}}, reloaded)
	})

	t.Run("sequential deletes keep the file a mirror of the list", func(t *testing.T) {
		// Arrange
		path := filepath.Join(t.TempDir(), "contacts.txt")
		uc := contact.NewUsecase(flatfile.NewContactRepository(path))
		for _, c := range []contact.Contact{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Bob", Email: "bob@example.com"},
			{Name: "Carol", Email: "carol@example.com"},
			{Name: "Dave", Email: "dave@example.com"},
		} {
			_, err := uc.AddContact(context.Background(), c)
			require.NoError(t, err)
		}

		// Act and Assert
		require.NoError(t, uc.RemoveContact(context.Background(), 1))
		assertFileMirrorsList(t, path, uc)

		require.NoError(t, uc.RemoveContact(context.Background(), 2))
		assertFileMirrorsList(t, path, uc)

		listed, _ := uc.ListContacts(context.Background())
		assert.Equal(t, []string{"Alice", "Carol"}, names(listed))
	})

	t.Run("a failed add leaves the stored contacts unchanged", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("root ignores file permissions")
		}

		// Arrange
		path := writeFile(t, "Alice;alice@example.com\n")
		uc := contact.NewUsecase(flatfile.NewContactRepository(path))
		before, err := uc.LoadContacts(context.Background())
		require.NoError(t, err)
		require.NoError(t, os.Chmod(path, 0o444))
		t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

		// Act
		_, err = uc.AddContact(context.Background(), contact.Contact{Name: "Bob", Email: "bob@example.com"})

		// Assert
		assert.True(t, contact.IsStorageWriteError(err))
		listed, _ := uc.ListContacts(context.Background())
		assert.Equal(t, before, listed)
		after, err := flatfile.NewContactRepository(path).AllContacts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestContactRepository_UnusablePath(t *testing.T) {
	// Given a store path that is a directory
	uc := contact.NewUsecase(flatfile.NewContactRepository(t.TempDir()))

	// When loading and adding
	_, loadErr := uc.LoadContacts(context.Background())
	_, addErr := uc.AddContact(context.Background(), contact.Contact{Name: "Bob", Email: "bob@example.com"})

	// Then both fail and the list stays empty
	assert.True(t, contact.IsStorageReadError(loadErr))
	assert.True(t, contact.IsStorageWriteError(addErr))
	listed, _ := uc.ListContacts(context.Background())
	assert.Empty(t, listed)
}

func assertFileMirrorsList(t *testing.T, path string, uc *contact.Usecase) {
	t.Helper()
	listed, _ := uc.ListContacts(context.Background())
	content := readFile(t, path)
	assert.Equal(t, len(listed), strings.Count(content, "\n"), "line count should equal list size")

	stored, err := flatfile.NewContactRepository(path).AllContacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, listed, stored)
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), "."), "leftover temp file %s", e.Name())
	}
}

func names(contacts []contact.Contact) []string {
	out := make([]string, len(contacts))
	for i, c := range contacts {
		out[i] = c.Name
	}
	return out
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contacts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
