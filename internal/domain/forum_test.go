package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoveCountCountsOnlyActiveLoves(t *testing.T) {
	topic := ForumTopic{Loves: map[string]bool{"a": true, "b": false, "c": true}}
	assert.Equal(t, 2, topic.LoveCount())

	assert.Zero(t, ForumTopic{}.LoveCount(), "nil map counts as zero")
}
