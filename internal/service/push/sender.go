// Package push delivers Web Push messages to registered browser endpoints.
package push

import (
	"context"
	"errors"

	"github.com/twoofus/server/internal/model"
)

const (
	ProviderWebPush = "webpush"
	ProviderLog     = "log"
)

// ErrGone reports that the push service no longer knows the endpoint
// (HTTP 404 or 410). Callers delete the subscription.
var ErrGone = errors.New("push endpoint gone")

// Sender delivers one message to one endpoint.
type Sender interface {
	Send(ctx context.Context, sub *model.PushSubscription, msg model.PushMessage) error
}
