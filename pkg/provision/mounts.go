package provision

import (
	"fmt"
	"strings"

	specs "github.com/opencontainers/runtime-spec/specs-go"

	"github.com/cuemby/burrow/pkg/template"
)

// ParseVolume converts a docker style volume spec into a bind mount.
//
//	/host:/container       read-write bind
//	/host:/container:ro    read-only bind
//	/container             anonymous volume, no host source
func ParseVolume(spec string) (specs.Mount, error) {
	parts := strings.Split(spec, ":")

	var source, target, mode string
	switch len(parts) {
	case 1:
		target = parts[0]
	case 2:
		source, target = parts[0], parts[1]
	case 3:
		source, target, mode = parts[0], parts[1], parts[2]
	default:
		return specs.Mount{}, fmt.Errorf("invalid volume %q: too many fields", spec)
	}

	if !strings.HasPrefix(target, "/") {
		return specs.Mount{}, fmt.Errorf("invalid volume %q: container path must be absolute", spec)
	}

	mount := specs.Mount{
		Source:      source,
		Destination: target,
		Type:        "bind",
		Options:     []string{"rbind"},
	}
	if source == "" {
		mount.Type = "volume"
		mount.Options = nil
	}

	switch mode {
	case "", "rw":
		mount.Options = append(mount.Options, "rw")
	case "ro":
		mount.Options = append(mount.Options, "ro")
	default:
		return specs.Mount{}, fmt.Errorf("invalid volume %q: unknown mode %s", spec, mode)
	}

	return mount, nil
}

// buildMounts returns the template's volume mounts followed by the remoteFs
// mapping, which binds the mapped host path onto remoteFs.
func buildMounts(tmpl *template.Template) ([]specs.Mount, error) {
	volumes := tmpl.Volumes()
	mounts := make([]specs.Mount, 0, len(volumes)+1)

	for _, volume := range volumes {
		mount, err := ParseVolume(volume)
		if err != nil {
			return nil, err
		}
		mounts = append(mounts, mount)
	}

	if mapping := tmpl.RemoteFsMapping(); mapping != "" {
		mounts = append(mounts, specs.Mount{
			Source:      mapping,
			Destination: tmpl.RemoteFs(),
			Type:        "bind",
			Options:     []string{"rbind", "rw"},
		})
	}

	return mounts, nil
}
