package interfaces

import (
	"context"

	"github.com/m-mizutani/drover/pkg/domain/model"
)

// Notifier delivers run notifications to a chat channel. Delivery is best
// effort; failures are logged and never change the run result.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}
