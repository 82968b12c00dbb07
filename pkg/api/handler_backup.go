package api

import (
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	echo "github.com/labstack/echo/v5"

	"github.com/rafiq-ai/rafiq/pkg/backup"
)

// backupCreateHandler handles POST /backup/: runs a full snapshot now.
func (s *Server) backupCreateHandler(c *echo.Context) error {
	path, err := s.backupSvc.Run(c.Request().Context())
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"path": path})
}

// backupTimestamp extracts the "20060102-150405" timestamp token from a
// backup.Service snapshot filename, the inverse of the "rafiq-backup-%s.json"
// format backup.Run writes.
func backupTimestamp(name string) string {
	name = strings.TrimPrefix(name, "rafiq-backup-")
	return strings.TrimSuffix(name, ".json")
}

// backupListHandler handles GET /backup/.
func (s *Server) backupListHandler(c *echo.Context) error {
	entries, err := os.ReadDir(s.cfg.DataDir)
	if err != nil {
		return mapServiceError(err)
	}

	timestamps := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "rafiq-backup-") {
			continue
		}
		timestamps = append(timestamps, backupTimestamp(entry.Name()))
	}
	sort.Sort(sort.Reverse(sort.StringSlice(timestamps)))
	return c.JSON(http.StatusOK, timestamps)
}

// backupRestoreHandler handles POST /backup/restore/{timestamp}.
func (s *Server) backupRestoreHandler(c *echo.Context) error {
	timestamp := c.Param("timestamp")
	if timestamp == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "timestamp is required")
	}

	path := filepath.Join(s.cfg.DataDir, "rafiq-backup-"+timestamp+".json")
	snap, err := backup.LoadSnapshot(path)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "backup not found for that timestamp")
	}

	if err := s.backupSvc.Restore(c.Request().Context(), snap); err != nil {
		return mapServiceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
