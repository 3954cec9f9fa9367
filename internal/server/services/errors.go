package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
)

var sentinels = []error{
	common.ErrorNotFound,
	common.ErrorAlreadyExists,
	common.ErrorValidation,
	common.ErrorUnauthorized,
	common.ErrorUnavailable,
	common.ErrorInternal,
}

// translate leaves sentinel errors untouched and classifies anything else
// coming from storage as ErrorUnavailable or ErrorInternal.
func translate(err error) error {
	if err == nil {
		return nil
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return err
		}
	}
	if dbx.IsUnavailable(err) {
		return fmt.Errorf("%w: %v", common.ErrorUnavailable, err)
	}
	return fmt.Errorf("%w: %v", common.ErrorInternal, err)
}
