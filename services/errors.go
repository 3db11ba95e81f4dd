package services

import (
	"errors"

	"knowledge-base-api/logger"
	"knowledge-base-api/models"

	"gorm.io/gorm"
)

// storeError maps store failures onto the typed domain errors. Errors that
// are already typed pass through untouched.
func storeError(op string, err error, notFound string) error {
	if err == nil {
		return nil
	}

	switch err.(type) {
	case models.ErrorValidation, models.ErrorNotFound, models.ErrorConflict,
		models.ErrorUnauthorized, models.ErrorForbidden, models.ErrorInternalServer:
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrorNotFound{Message: notFound}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.ErrorConflict{Message: "record already exists"}
	}

	logger.Log.Errorw(op, "error", err)
	return models.ErrorInternalServer{Message: op, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// uniqueIDs drops duplicates and keeps first-seen order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
