package heroes

import "strings"

// PortraitBaseURL is the Steam CDN directory holding hero portraits.
const PortraitBaseURL = "https://cdn.cloudflare.steamstatic.com/apps/dota2/images/dota_react/heroes/"

var portraitReplacer = strings.NewReplacer(" ", "_", "'", "")

// PortraitURL returns the CDN portrait for a hero display name, e.g.
// "Nature's Prophet" -> .../heroes/natures_prophet.png. Empty names give "".
func PortraitURL(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return PortraitBaseURL + portraitReplacer.Replace(strings.ToLower(name)) + ".png"
}
