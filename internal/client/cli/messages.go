package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/dktlearn/internal/client/client"
	"github.com/dmitrijs2005/dktlearn/internal/client/services"
	"github.com/dmitrijs2005/dktlearn/internal/common"
)

// userMessage renders err for the terminal: validation problems in full, API
// failures by their normalized message, and the rest as is.
func userMessage(err error) string {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Problems) == 1 {
			return verr.Problems[0]
		}
		return "\n  - " + strings.Join(verr.Problems, "\n  - ")
	}

	switch {
	case errors.Is(err, common.ErrSessionExpired):
		return client.MsgSessionEnded
	case errors.Is(err, common.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, common.ErrBusy):
		return "already in progress, please wait"
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
