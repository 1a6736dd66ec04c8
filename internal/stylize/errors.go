package stylize

import "errors"

// ErrNoScript is returned when the runner has no script configured.
var ErrNoScript = errors.New("no stylizer script configured")
