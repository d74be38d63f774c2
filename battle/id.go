package battle

import "strings"

// ToID normalizes a display name ("Flare Blitz", "Urshifu-Rapid-Strike") into the
// lowercase alphanumeric identifier used throughout the Showdown protocol.
func ToID(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
