package repository

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"todoapi/internal/activity/model"
	"todoapi/pkg/logger"

	"github.com/tidwall/pretty"
)

const DefaultDataFile = "todos.json"

// FileRepository keeps the activity list in a single JSON file.
type FileRepository struct {
	Path string
}

func NewFileRepository(path string) *FileRepository {
	if path == "" {
		path = DefaultDataFile
	}
	return &FileRepository{Path: path}
}

func (r *FileRepository) Load() ([]model.Activity, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		logger.Sugar.Errorf("Failed to read %s: %v", r.Path, err)
		return nil, fmt.Errorf("%w: read %s: %v", model.ErrFileAccess, r.Path, err)
	}
	activities, err := model.ParseActivities(data)
	if err != nil {
		logger.Sugar.Errorf("Failed to parse %s: %v", r.Path, err)
		return nil, err
	}
	return activities, nil
}

// Save writes the list to a temp file in the same directory and renames it
// over the target, so readers see either the old or the new content.
func (r *FileRepository) Save(activities []model.Activity) error {
	if activities == nil {
		activities = []model.Activity{}
	}
	data, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", model.ErrFileAccess, err)
	}
	data = pretty.Pretty(data)

	if err := writeFileAtomic(r.Path, data); err != nil {
		logger.Sugar.Errorf("Failed to write %s: %v", r.Path, err)
		return fmt.Errorf("%w: write %s: %v", model.ErrFileAccess, r.Path, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}
	renamed = true
	return nil
}
