package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	assert.Equal(t, "depthmap "+Version, String())

	commit, built := GitCommit, BuildTime
	t.Cleanup(func() { GitCommit, BuildTime = commit, built })
	GitCommit, BuildTime = "abc1234", "2026-01-02T03:04:05Z"
	assert.Equal(t, "depthmap "+Version+" (abc1234, built 2026-01-02T03:04:05Z)", String())
}
