// Package browser reads the chat backend's session cookie from installed
// web browsers, so the CLI can continue a conversation started in the page.
package browser

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/ai29/internal/config"
)

// SupportedBrowser represents a supported browser type
type SupportedBrowser string

const (
	BrowserAuto     SupportedBrowser = "auto"
	BrowserChrome   SupportedBrowser = "chrome"
	BrowserChromium SupportedBrowser = "chromium"
	BrowserFirefox  SupportedBrowser = "firefox"
	BrowserEdge     SupportedBrowser = "edge"
	BrowserOpera    SupportedBrowser = "opera"
)

// searchOrder is the order tried for BrowserAuto
var searchOrder = []SupportedBrowser{
	BrowserChrome,
	BrowserFirefox,
	BrowserEdge,
	BrowserChromium,
	BrowserOpera,
}

// AllSupportedBrowsers returns every concrete browser, in search order
func AllSupportedBrowsers() []SupportedBrowser {
	out := make([]SupportedBrowser, len(searchOrder))
	copy(out, searchOrder)
	return out
}

func (b SupportedBrowser) String() string {
	return string(b)
}

// ParseBrowser parses a browser name, accepting common aliases
func ParseBrowser(s string) (SupportedBrowser, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return BrowserAuto, nil
	case "chrome", "google-chrome":
		return BrowserChrome, nil
	case "chromium":
		return BrowserChromium, nil
	case "firefox", "mozilla", "mozilla-firefox":
		return BrowserFirefox, nil
	case "edge", "microsoft-edge", "msedge":
		return BrowserEdge, nil
	case "opera":
		return BrowserOpera, nil
	default:
		return "", fmt.Errorf("unsupported browser: %s. Supported: chrome, chromium, firefox, edge, opera", s)
	}
}

// ExtractResult is a session cookie found in a browser profile
type ExtractResult struct {
	Cookie      config.SessionCookie
	BrowserName string
}

// candidate is the part of a browser cookie needed for selection
type candidate struct {
	Name   string
	Value  string
	Domain string
	Path   string
}

// ExtractSessionCookie finds the cookie called name that the browser holds
// for serverURL's host
func ExtractSessionCookie(ctx context.Context, browser SupportedBrowser, serverURL, name string) (*ExtractResult, error) {
	host, err := hostOf(serverURL)
	if err != nil {
		return nil, err
	}

	if browser != BrowserAuto {
		return extractFromBrowser(ctx, browser, host, name)
	}

	var lastErr error
	for _, b := range searchOrder {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result, err := extractFromBrowser(ctx, b, host, name)
		if err == nil {
			return result, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("could not find cookie %q for %s in any browser: %w", name, host, lastErr)
}

// hostOf returns the lower-case host of a server URL without port
func hostOf(serverURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(serverURL))
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL %q", serverURL)
	}
	host := u.Host
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(host), nil
}

// extractFromBrowser tries every profile of one browser
func extractFromBrowser(ctx context.Context, browser SupportedBrowser, host, name string) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var matching []kooky.CookieStore
	for _, store := range stores {
		if matchesBrowser(store.Browser(), browser) {
			matching = append(matching, store)
		} else {
			store.Close()
		}
	}
	if len(matching) == 0 {
		return nil, fmt.Errorf("browser %s not found or no cookie store available", browser)
	}

	var result *ExtractResult
	var lastErr error
	for _, store := range matching {
		if result == nil && lastErr != context.Canceled {
			result, lastErr = extractFromStore(ctx, store, host, name)
		}
		store.Close()
	}
	if result != nil {
		return result, nil
	}
	return nil, lastErr
}

// matchesBrowser checks whether a kooky browser name is the target browser
func matchesBrowser(browserName string, target SupportedBrowser) bool {
	browserName = strings.ToLower(browserName)

	switch target {
	case BrowserChrome:
		return strings.Contains(browserName, "chrome") && !strings.Contains(browserName, "chromium")
	case BrowserChromium:
		return strings.Contains(browserName, "chromium")
	case BrowserFirefox:
		return strings.Contains(browserName, "firefox")
	case BrowserEdge:
		return strings.Contains(browserName, "edge")
	case BrowserOpera:
		return strings.Contains(browserName, "opera")
	default:
		return false
	}
}

func extractFromStore(ctx context.Context, store kooky.CookieStore, host, name string) (*ExtractResult, error) {
	cookies := store.TraverseCookies(kooky.Valid, kooky.Name(name)).OnlyCookies()

	var candidates []candidate
	for cookie := range cookies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookie.Domain,
			Path:   cookie.Path,
		})
	}

	displayName := store.Browser()
	if profile := store.Profile(); profile != "" {
		displayName = fmt.Sprintf("%s (profile: %s)", displayName, profile)
	}

	best, ok := selectCookie(candidates, host, name)
	if !ok {
		return nil, fmt.Errorf("cookie %q for %s not found in %s. Open the chat page in this browser first", name, host, displayName)
	}

	return &ExtractResult{
		Cookie: config.SessionCookie{
			Name:   best.Name,
			Value:  best.Value,
			Domain: best.Domain,
			Path:   best.Path,
		},
		BrowserName: displayName,
	}, nil
}

// selectCookie picks the cookie for host, preferring the most specific domain
func selectCookie(cookies []candidate, host, name string) (candidate, bool) {
	var best candidate
	found := false
	for _, c := range cookies {
		if c.Name != name || c.Value == "" || !domainMatches(c.Domain, host) {
			continue
		}
		if !found || len(strings.TrimPrefix(c.Domain, ".")) > len(strings.TrimPrefix(best.Domain, ".")) {
			best = c
			found = true
		}
	}
	return best, found
}

// domainMatches applies cookie domain matching: an exact host match or a
// parent domain of host
func domainMatches(domain, host string) bool {
	domain = strings.ToLower(strings.TrimPrefix(domain, "."))
	if domain == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// ListAvailableBrowsers returns the browsers that have cookie stores
func ListAvailableBrowsers(ctx context.Context) []string {
	var browsers []string
	seen := make(map[string]bool)
	for _, store := range kooky.FindAllCookieStores(ctx) {
		name := store.Browser()
		if !seen[name] {
			browsers = append(browsers, name)
			seen[name] = true
		}
		store.Close()
	}
	return browsers
}
