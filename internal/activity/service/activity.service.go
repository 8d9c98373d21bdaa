package service

import (
	"strings"
	"sync"

	"todoapi/internal/activity/model"
	"todoapi/internal/activity/repository"
	"todoapi/pkg/logger"

	"golang.org/x/text/cases"
)

// Publisher receives an event after every successful mutation. Publish is
// called with the store lock held and must not block.
type Publisher interface {
	Publish(evt model.ActivityEvent)
}

// ActivityService is the activity store: the authoritative in-memory list,
// kept in step with its repository. Mutations hold the write lock for the
// whole mutate-then-persist sequence.
type ActivityService struct {
	Repo repository.ActivityRepository

	mu         sync.RWMutex
	activities []model.Activity
	unsaved    bool // memory is ahead of the repository after a failed write
	publisher  Publisher
}

func NewActivityService(repo repository.ActivityRepository, publisher Publisher) *ActivityService {
	return &ActivityService{
		Repo:       repo,
		activities: []model.Activity{},
		publisher:  publisher,
	}
}

// Load replaces the in-memory list with the repository content. Lists whose
// ids are not exactly 1..N are renumbered in order and written back once.
func (s *ActivityService) Load() ([]model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.Repo.Load()
	if err != nil {
		return nil, err
	}
	s.activities = loaded
	s.unsaved = false
	if !denseIDs(s.activities) {
		logger.Sugar.Warnf("Activity ids are not contiguous, renumbering %d activities", len(s.activities))
		for i := range s.activities {
			s.activities[i].ID = i + 1
		}
		if err := s.persistLocked(); err != nil {
			logger.Sugar.Warnf("Failed to persist renumbered activities: %v", err)
		}
	}
	logger.Sugar.Infof("Loaded %d activities", len(s.activities))
	return cloneAll(s.activities), nil
}

// Save persists the current in-memory list.
func (s *ActivityService) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

// Flush saves only when an earlier write failed.
func (s *ActivityService) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.unsaved {
		return nil
	}
	logger.Sugar.Infof("Retrying write of %d unsaved activities", len(s.activities))
	return s.persistLocked()
}

// Unsaved reports whether memory holds changes the repository does not.
func (s *ActivityService) Unsaved() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsaved
}

func (s *ActivityService) persistLocked() error {
	if err := s.Repo.Save(s.activities); err != nil {
		s.unsaved = true
		return err
	}
	s.unsaved = false
	return nil
}

func (s *ActivityService) All() []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.activities)
}

// Snapshot calls fn with a copy of the list while holding the read lock, so no
// mutation or event can happen until fn returns.
func (s *ActivityService) Snapshot(fn func([]model.Activity)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(cloneAll(s.activities))
}

func (s *ActivityService) FindByTitleSubstring(sub string) []model.Activity {
	return s.filter(func(a model.Activity) bool { return containsFold(a.Title, sub) })
}

func (s *ActivityService) FindByDescriptionSubstring(sub string) []model.Activity {
	return s.filter(func(a model.Activity) bool { return containsFold(a.Description, sub) })
}

func (s *ActivityService) FindByID(id int) (model.Activity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.activities {
		if a.ID == id {
			return a.Clone(), true
		}
	}
	return model.Activity{}, false
}

// FindByTitleExact matches a title case-insensitively after turning "_" into
// spaces, so titles with spaces can be passed as a single path segment.
func (s *ActivityService) FindByTitleExact(title string) (model.Activity, bool) {
	fold := cases.Fold()
	want := fold.String(strings.ReplaceAll(title, "_", " "))
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.activities {
		if a.Title != nil && fold.String(*a.Title) == want {
			return a.Clone(), true
		}
	}
	return model.Activity{}, false
}

// Add assigns the next id, appends and persists. When persisting fails the
// activity stays in memory, is still published, and the error is returned
// alongside it.
func (s *ActivityService) Add(candidate model.Activity) (model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := candidate.Clone()
	created.ID = maxID(s.activities) + 1
	s.activities = append(s.activities, created)
	s.publish(model.ActivityEvent{Type: model.AddedEvent, Payload: created.Clone()})
	if err := s.persistLocked(); err != nil {
		logger.Sugar.Errorf("Activity %d added in memory but not persisted: %v", created.ID, err)
		return created.Clone(), err
	}
	return created.Clone(), nil
}

// DeleteByID removes the activity and shifts every higher id down by one.
// It reports false, without persisting, when no activity has that id.
func (s *ActivityService) DeleteByID(id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, a := range s.activities {
		if a.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false, nil
	}

	s.activities = append(s.activities[:idx], s.activities[idx+1:]...)
	for i := range s.activities {
		if s.activities[i].ID > id {
			s.activities[i].ID--
		}
	}
	s.publish(model.ActivityEvent{Type: model.DeletedEvent, Payload: model.DeletedPayload{ID: id}})
	if err := s.persistLocked(); err != nil {
		logger.Sugar.Errorf("Activity %d deleted in memory but not persisted: %v", id, err)
		return true, err
	}
	return true, nil
}

func (s *ActivityService) filter(match func(model.Activity) bool) []model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Activity{}
	for _, a := range s.activities {
		if match(a) {
			out = append(out, a.Clone())
		}
	}
	return out
}

func (s *ActivityService) publish(evt model.ActivityEvent) {
	if s.publisher != nil {
		s.publisher.Publish(evt)
	}
}

// containsFold is a case-insensitive substring test. A nil field never matches.
func containsFold(field *string, sub string) bool {
	if field == nil {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(*field), fold.String(sub))
}

func maxID(activities []model.Activity) int {
	max := 0
	for _, a := range activities {
		if a.ID > max {
			max = a.ID
		}
	}
	return max
}

func denseIDs(activities []model.Activity) bool {
	seen := make(map[int]bool, len(activities))
	for _, a := range activities {
		if a.ID < 1 || a.ID > len(activities) || seen[a.ID] {
			return false
		}
		seen[a.ID] = true
	}
	return true
}

func cloneAll(activities []model.Activity) []model.Activity {
	out := make([]model.Activity, 0, len(activities))
	for _, a := range activities {
		out = append(out, a.Clone())
	}
	return out
}
