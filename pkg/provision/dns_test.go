package provision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvConf(t *testing.T) {
	assert.Equal(t, "", ResolvConf(nil))

	content := ResolvConf([]string{"10.0.0.2", "8.8.8.8"})
	lines := strings.Split(strings.TrimSpace(content), "\n")

	assert.Equal(t, []string{
		"# Generated from the agent template - do not edit manually",
		"nameserver 10.0.0.2",
		"nameserver 8.8.8.8",
		"options ndots:0",
	}, lines)
}
