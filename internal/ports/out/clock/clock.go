package clock

import "time"

// Clock provides time to the application.
// Daily-log dates and the dev API's token expiry both read it, so tests can pin "today".
type Clock interface {
	Now() time.Time
}
