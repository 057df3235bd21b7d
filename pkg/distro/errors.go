package distro

import "errors"

// ErrUnsupportedPM is returned for a package manager name no bridge
// command template is known for.
var ErrUnsupportedPM = errors.New("distro: unsupported package manager")
