package service

import (
	"errors"

	dErrors "jassari/pkg/domain-errors"
	"jassari/pkg/platform/sentinel"
)

// translateStoreErr converts store sentinels into the coded errors the API
// surfaces. Anything unexpected is wrapped as internal.
func translateStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "youth profile not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "youth profile already exists")
	case errors.Is(err, sentinel.ErrExpired):
		return dErrors.Wrap(err, dErrors.CodeTokenExpired, "token has expired")
	default:
		var coded *dErrors.Error
		if errors.As(err, &coded) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage failure")
	}
}
