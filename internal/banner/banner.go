// Package banner renders the CLI start-up banner.
package banner

import "fmt"

const art = `
  _   ___      ____ _ ___ ___  ___ _ __| |_
 | | | \ \ /\ / / _' / __/ __|/ _ \ '__| __|
 | |_| |\ V  V / (_| \__ \__ \  __/ |  | |_
  \__,_| \_/\_/ \__,_|___/___/\___|_|   \__|
`

// Banner returns the banner text followed by the version line.
func Banner(version string) string {
	return fmt.Sprintf("%s\n  clinical assertion classifier %s\n\n", art, version)
}
