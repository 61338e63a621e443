package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	assert.Equal(t, "acme-co-ltd", Slugify("  Acme & Co., Ltd. "))
	assert.Equal(t, "x-1", Slugify("--X 1--"))
	assert.Equal(t, "", Slugify("!!!"))
}
