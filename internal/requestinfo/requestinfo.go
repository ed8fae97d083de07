//
//  internal/requestinfo/requestinfo.go
//
//  Per-request client metadata: user-agent class, client IP, and country.
//  The storefront uses it to keep crawler hits out of the affiliate click
//  log and to pick the partner country (NL or BE) for product lookups.
//  These structs are inert, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • github.com/avct/uasurfer          (UA parsing)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup, optional)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// UA holds the parsed user-agent properties.
type UA struct {
	Raw     string `json:"-"`
	Browser string `json:"browser"` // "BrowserChrome" → "Chrome"
	Version string `json:"version"` // "124.0.6367"; trailing zeros trimmed
	OS      string `json:"os"`
	Device  string `json:"device"` // "Desktop", "Mobile", "Tablet", or "Other"
	IsBot   bool   `json:"bot"`
}

// Info is stored in the request context by Enricher.Middleware.
type Info struct {
	UA        UA        `json:"ua"`
	IP        net.IP    `json:"ip"`
	Country   string    `json:"country,omitempty"` // ISO code; empty without a GeoIP DB
	Timestamp time.Time `json:"ts"`
}

//
//  -----------------------------
//  Context helpers
//  -----------------------------
//

type ctxKey struct{}

// FromContext returns the Info attached by the middleware, or nil.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// WithInfo returns a child context carrying info.
func WithInfo(ctx context.Context, info *Info) context.Context {
	return context.WithValue(ctx, ctxKey{}, info)
}

// IsBot reports whether the request was classified as a crawler.  Requests
// that skipped the middleware count as human.
func IsBot(ctx context.Context) bool {
	if info := FromContext(ctx); info != nil {
		return info.UA.IsBot
	}
	return false
}

// Country returns the ISO country for the request, or "".
func Country(ctx context.Context) string {
	if info := FromContext(ctx); info != nil {
		return info.Country
	}
	return ""
}

//
//  -----------------------------
//  GeoIP
//  -----------------------------
//

// Enricher owns the optional GeoLite2 handle.  A nil reader disables
// country lookups; everything else still works.
type Enricher struct {
	geo *geoip2.Reader
}

// NewEnricher opens the GeoLite2 Country or City database at path.  An
// empty path returns an Enricher without geo support.
func NewEnricher(path string) (*Enricher, error) {
	if path == "" {
		return &Enricher{}, nil
	}
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open geoip db: %w", err)
	}
	return &Enricher{geo: r}, nil
}

// Close releases the GeoIP database.
func (e *Enricher) Close() error {
	if e == nil || e.geo == nil {
		return nil
	}
	return e.geo.Close()
}

func (e *Enricher) country(ip net.IP) string {
	if e == nil || e.geo == nil || ip == nil {
		return ""
	}
	rec, err := e.geo.Country(ip)
	if err != nil {
		return ""
	}
	return rec.Country.IsoCode
}

//
//  -----------------------------
//  UA parsing
//  -----------------------------
//

// ParseUA converts a raw header into UA.
func ParseUA(raw string) UA {
	u := uasurfer.Parse(raw)
	out := UA{
		Raw:     raw,
		Browser: trimPrefix(u.Browser.Name.String(), "Browser"),
		Version: versionString(u.Browser.Version),
		OS:      trimPrefix(u.OS.Name.String(), "OS"),
		IsBot:   u.IsBot(),
	}
	switch u.DeviceType {
	case uasurfer.DeviceComputer:
		out.Device = "Desktop"
	case uasurfer.DeviceTablet:
		out.Device = "Tablet"
	case uasurfer.DevicePhone, uasurfer.DeviceWearable:
		out.Device = "Mobile"
	default:
		out.Device = "Other"
	}
	return out
}

func trimPrefix(s, p string) string {
	if len(s) > len(p) && s[:len(p)] == p {
		return s[len(p):]
	}
	return s
}

// versionString renders 17.0.0 → "17", 17.3.0 → "17.3", 17.3.1 → "17.3.1".
func versionString(v uasurfer.Version) string {
	switch {
	case v.Major == 0 && v.Minor == 0 && v.Patch == 0:
		return ""
	case v.Patch != 0:
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	case v.Minor != 0:
		return fmt.Sprintf("%d.%d", v.Major, v.Minor)
	default:
		return strconv.Itoa(int(v.Major))
	}
}
