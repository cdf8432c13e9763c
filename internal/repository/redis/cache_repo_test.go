package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewCacheRepo_NilClient(t *testing.T) {
	repo, err := NewCacheRepo(nil)

	assert.Error(t, err)
	assert.Nil(t, repo)
}
