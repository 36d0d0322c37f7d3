package session

import (
	"errors"

	"github.com/abhisek/lasi/internal/apiclient"
	"github.com/abhisek/lasi/internal/lang"
)

// Message returns the localized text to show for an action error. Stale
// results produce no message since nothing the reader asked for failed.
func Message(l lang.Language, err error) string {
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return ""
	case errors.Is(err, ErrBusy):
		return lang.Text(l, lang.MsgBusy)
	case errors.Is(err, ErrNoText), errors.Is(err, ErrNoQuestion):
		return lang.Text(l, lang.MsgInvalidRequest)
	}
	return apiclient.Message(l, err)
}
