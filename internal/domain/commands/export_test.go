package commands

import "time"

// DeclaresSamePlatform exports declaresSamePlatform for testing.
var DeclaresSamePlatform = declaresSamePlatform //nolint:gochecknoglobals // test export

// RenderChangeComment exports renderChangeComment for testing.
var RenderChangeComment = renderChangeComment //nolint:gochecknoglobals // test export

// SetClock replaces the clock used by Stage B.
func (it *DiscoverCommand) SetClock(now func() time.Time) {
	it.now = now
}
