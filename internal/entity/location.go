package entity

import (
	"regexp"
	"strings"
)

const DefaultPage = "home"

var hashRoutePage = regexp.MustCompile(`/#/(\w+)`)

// SanitizeSite turns a URL-ish site identifier into a directory name: scheme
// and hash-route markers are removed and remaining path separators flattened.
func SanitizeSite(site string) string {
	site = strings.TrimSpace(site)
	site = strings.TrimPrefix(site, "https://")
	site = strings.TrimPrefix(site, "http://")
	site = strings.ReplaceAll(site, "#/", "")
	site = strings.Trim(site, "/")
	site = strings.ReplaceAll(site, "/", "_")
	site = strings.ReplaceAll(site, "..", "_")

	return site
}

// SanitizePage turns a page identifier into a file name stem. Path
// separators and parent references are flattened so the result stays inside
// its site directory.
func SanitizePage(page string) string {
	page = strings.TrimSpace(page)
	page = strings.ReplaceAll(page, "/", "_")
	page = strings.ReplaceAll(page, `\`, "_")
	page = strings.ReplaceAll(page, "..", "_")

	return page
}

// SiteAndPage extracts the host and the hash-route page name from a page URL.
func SiteAndPage(pageURL string) (site, page string) {
	if pageURL == "" {
		return "", ""
	}

	site = strings.TrimPrefix(strings.TrimPrefix(pageURL, "https://"), "http://")
	site = strings.SplitN(site, "/", 2)[0]
	site = strings.SplitN(site, "#", 2)[0]

	page = DefaultPage
	if m := hashRoutePage.FindStringSubmatch(pageURL); m != nil {
		page = m[1]
	}

	return site, page
}
