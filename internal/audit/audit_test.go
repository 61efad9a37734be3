package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/medcompanion/internal/entities"
)

func TestArchiver(t *testing.T) {
	archiveDir := filepath.Join(t.TempDir(), "archive")
	archiver := NewArchiver(archiveDir)

	events := []entities.AuditEvent{
		{ID: 1, UserID: 7, EventType: entities.AuditEventAuth, Action: "login"},
		{ID: 2, UserID: 7, EventType: entities.AuditEventMedicine, Action: "medicine_add"},
	}

	t.Run("Archive creates the directory and saves the batch", func(t *testing.T) {
		filename, err := archiver.Archive(events)
		require.NoError(t, err)
		assert.Contains(t, filename, ".json")

		fileContent, err := os.ReadFile(filepath.Join(archiveDir, filename))
		require.NoError(t, err)

		var saved []entities.AuditEvent
		require.NoError(t, json.Unmarshal(fileContent, &saved))
		require.Len(t, saved, 2)
		assert.Equal(t, "medicine_add", saved[1].Action)
	})

	t.Run("Archive generates unique filenames", func(t *testing.T) {
		first, err := archiver.Archive(events)
		require.NoError(t, err)
		second, err := archiver.Archive(events)
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("Archive skips empty batches", func(t *testing.T) {
		emptyDir := filepath.Join(t.TempDir(), "empty")
		filename, err := NewArchiver(emptyDir).Archive(nil)
		require.NoError(t, err)
		assert.Empty(t, filename)

		_, err = os.Stat(emptyDir)
		assert.True(t, os.IsNotExist(err))
	})
}
