package provision

import (
	"fmt"
	"strings"
)

// ResolvConf renders the resolv.conf handed to an agent container. It
// returns "" when the template sets no DNS servers, leaving the runtime
// default in place.
//
// Format:
//
//	nameserver <host>    # one per template DNS entry, in order
//	options ndots:0
func ResolvConf(hosts []string) string {
	if len(hosts) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("# Generated from the agent template - do not edit manually\n")
	for _, host := range hosts {
		fmt.Fprintf(&b, "nameserver %s\n", host)
	}
	b.WriteString("options ndots:0\n")
	return b.String()
}
