package repository

import "todoapi/internal/activity/model"

// ActivityRepository is the persistence boundary of the activity store. Load
// returns the whole collection; Save replaces it.
type ActivityRepository interface {
	Load() ([]model.Activity, error)
	Save(activities []model.Activity) error
}
