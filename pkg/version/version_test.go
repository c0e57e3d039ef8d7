package version_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/csstree/pkg/version"
)

func TestString(t *testing.T) {
	t.Parallel()

	str := version.String()
	assert.True(t, strings.HasPrefix(str, version.Version+" ("), str)
	assert.True(t, strings.HasSuffix(str, ")"), str)
}
