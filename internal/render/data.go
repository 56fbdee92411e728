package render

import "git.home.luguber.info/inful/sitebuilder/internal/config"

// SiteData returns the site-wide values every template receives.
func SiteData(s *config.Settings) map[string]any {
	return map[string]any{
		"sitename":        s.Site.SiteName,
		"webRoot":         s.Site.WebRoot,
		"author":          s.Site.Author,
		"ogpDefaultImage": s.Site.OGPDefaultImage,
		"typekitId":       s.Integrations.TypekitID,
		"analyticsDomain": s.Integrations.AnalyticsDomain,
		"twitterHandle":   s.Social.TwitterHandle,
		"fediHandle":      s.Social.FediHandle,
	}
}

// Merge returns a new map with the entries of every map, later maps winning.
func Merge(maps ...map[string]any) map[string]any {
	n := 0
	for _, m := range maps {
		n += len(m)
	}
	out := make(map[string]any, n)
	for _, m := range maps {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
