package types

// Version is the application version. Overridden at build time via
// -ldflags "-X github.com/m-mizutani/drover/pkg/domain/types.Version=...".
var Version = "dev"

// AppName appears in user-facing output, issue footers and notifications.
const AppName = "drover"
