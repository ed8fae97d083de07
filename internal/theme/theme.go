// Package theme picks the storefront's seasonal theme.
//
// A Theme combines:
//
//   - Name      – short key, also the asset directory (for example, "kerst").
//   - Headline  – the hero headline shown on the home page.
//   - Accent    – CSS accent colour.
//   - Hero      – hero image path under /themes/<name>/assets/.
//
// ForDate walks the event windows in a fixed order and falls back to the
// meteorological season.  Windows are inclusive and evaluated on the
// calendar date in Europe/Amsterdam: 26 December 23:30 UTC is already the
// 27th there and selects Oud & Nieuw.
package theme

import (
	"time"
	_ "time/tzdata"
)

// Theme is the visual variant served with every storefront response.
type Theme struct {
	Name     string `json:"name"`
	Headline string `json:"headline"`
	Accent   string `json:"accent"`
	Hero     string `json:"hero"`
}

// Asset resolves p inside the theme's asset folder.
func (t Theme) Asset(p string) string { return "/themes/" + t.Name + "/assets/" + p }

func newTheme(name, headline, accent string) Theme {
	t := Theme{Name: name, Headline: headline, Accent: accent}
	t.Hero = t.Asset("hero.jpg")
	return t
}

var (
	NewYear     = newTheme("oud-nieuw", "Knallend het nieuwe jaar in", "#d4af37")
	Valentine   = newTheme("valentijn", "Cadeaus voor je Valentijn", "#e0245e")
	KingsDay    = newTheme("koningsdag", "Oranje deals voor Koningsdag", "#ff7f00")
	BlackFriday = newTheme("black-friday", "De beste Black Friday deals", "#111111")
	Sinterklaas = newTheme("sinterklaas", "Cadeautips voor pakjesavond", "#c8102e")
	Christmas   = newTheme("kerst", "Cadeaus onder de kerstboom", "#1b5e20")

	Spring = newTheme("lente", "Frisse start dit voorjaar", "#7cb342")
	Summer = newTheme("zomer", "Klaar voor de zomer", "#fbc02d")
	Autumn = newTheme("herfst", "Gezellig binnen deze herfst", "#bf6c2f")
	Winter = newTheme("winter", "Warm de winter door", "#1e88e5")
)

// Location is the zone every window is evaluated in.
var Location = mustLoad("Europe/Amsterdam")

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

type window struct {
	theme Theme
	match func(d time.Time) bool
}

// windows are tried in order; the first match wins.
var windows = []window{
	{NewYear, func(d time.Time) bool {
		return between(d, time.December, 27, time.December, 31) || between(d, time.January, 1, time.January, 2)
	}},
	{Valentine, func(d time.Time) bool { return between(d, time.February, 7, time.February, 14) }},
	{KingsDay, func(d time.Time) bool { return between(d, time.April, 20, time.April, 27) }},
	{BlackFriday, inBlackFridayWeek},
	{Sinterklaas, func(d time.Time) bool {
		return between(d, time.November, 15, time.November, 30) || between(d, time.December, 1, time.December, 5)
	}},
	{Christmas, func(d time.Time) bool { return between(d, time.December, 6, time.December, 26) }},
}

// ForDate returns the theme for t.
func ForDate(t time.Time) Theme {
	d := t.In(Location)
	for _, w := range windows {
		if w.match(d) {
			return w.theme
		}
	}
	return season(d.Month())
}

func season(m time.Month) Theme {
	switch m {
	case time.March, time.April, time.May:
		return Spring
	case time.June, time.July, time.August:
		return Summer
	case time.September, time.October, time.November:
		return Autumn
	default:
		return Winter
	}
}

// between reports whether d's calendar date lies in [from, to] within one
// year.
func between(d time.Time, fm time.Month, fd int, tm time.Month, td int) bool {
	key := int(d.Month())*100 + d.Day()
	return key >= int(fm)*100+fd && key <= int(tm)*100+td
}

// BlackFridayDate returns the day after the fourth Thursday of November.
func BlackFridayDate(year int) time.Time {
	first := time.Date(year, time.November, 1, 0, 0, 0, 0, Location)
	offset := (int(time.Thursday) - int(first.Weekday()) + 7) % 7
	return first.AddDate(0, 0, offset+21+1)
}

// inBlackFridayWeek spans the Monday before through the Monday after.
func inBlackFridayWeek(d time.Time) bool {
	bf := BlackFridayDate(d.Year())
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, Location)
	return !day.Before(bf.AddDate(0, 0, -4)) && !day.After(bf.AddDate(0, 0, 3))
}
