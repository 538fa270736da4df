package model

import (
	"slices"
	"strconv"
	"strings"
)

// Layout holds the purely cosmetic slider settings.
type Layout struct {
	MaxWidth                 int
	ThumbHeight              int // 0 means auto
	ColsDesktop              int
	ColsTablet               int
	ColsMobile               int
	Gap                      int
	CenterOnClick            bool
	BorderRadius             int
	TitleColor               string
	TitleHoverColor          string
	ControlsSpacing          int
	ControlsSpacingTablet    int
	ControlsSpacingMobile    int
	ControlsBottomSpacing    int
	ArrowBorderRadius        int
	ArrowPadding             int
	ArrowWidth               int
	ArrowHeight              int
	ArrowBgColor             string
	ArrowHoverBgColor        string
	ArrowIconColor           string
	ArrowIconSize            int
	PaginationDotColor       string
	PaginationActiveDotColor string
}

// DefaultLayout returns the out-of-the-box slider appearance.
func DefaultLayout() Layout {
	l := Layout{CenterOnClick: true}
	for _, f := range layoutInts {
		*f.ptr(&l) = f.def
	}
	for _, f := range layoutColors {
		*f.ptr(&l) = f.def
	}
	return l
}

// AllowedThumbHeights are the fixed pixel heights a thumbnail may be capped at.
var AllowedThumbHeights = []int{80, 120, 160, 180, 200, 240, 300, 350, 400, 450, 500, 550, 600, 650}

type layoutInt struct {
	name   string
	lo, hi int
	def    int
	ptr    func(*Layout) *int
}

type layoutColor struct {
	name string
	def  string
	ptr  func(*Layout) *string
}

var layoutInts = []layoutInt{
	{"max_width", 200, 2000, 1450, func(l *Layout) *int { return &l.MaxWidth }},
	{"cols_desktop", 1, 12, 6, func(l *Layout) *int { return &l.ColsDesktop }},
	{"cols_tablet", 1, 8, 3, func(l *Layout) *int { return &l.ColsTablet }},
	{"cols_mobile", 1, 4, 2, func(l *Layout) *int { return &l.ColsMobile }},
	{"gap", 0, 100, 20, func(l *Layout) *int { return &l.Gap }},
	{"border_radius", 0, 50, 16, func(l *Layout) *int { return &l.BorderRadius }},
	{"controls_spacing", 20, 200, 56, func(l *Layout) *int { return &l.ControlsSpacing }},
	{"controls_spacing_tablet", 20, 200, 56, func(l *Layout) *int { return &l.ControlsSpacingTablet }},
	{"controls_spacing_mobile", 20, 200, 56, func(l *Layout) *int { return &l.ControlsSpacingMobile }},
	{"controls_bottom_spacing", 10, 100, 20, func(l *Layout) *int { return &l.ControlsBottomSpacing }},
	{"arrow_border_radius", 0, 50, 0, func(l *Layout) *int { return &l.ArrowBorderRadius }},
	{"arrow_padding", 0, 20, 3, func(l *Layout) *int { return &l.ArrowPadding }},
	{"arrow_width", 20, 100, 35, func(l *Layout) *int { return &l.ArrowWidth }},
	{"arrow_height", 20, 100, 35, func(l *Layout) *int { return &l.ArrowHeight }},
	{"arrow_icon_size", 12, 48, 28, func(l *Layout) *int { return &l.ArrowIconSize }},
}

var layoutColors = []layoutColor{
	{"title_color", "#111111", func(l *Layout) *string { return &l.TitleColor }},
	{"title_hover_color", "#000000", func(l *Layout) *string { return &l.TitleHoverColor }},
	{"arrow_bg_color", "#111111", func(l *Layout) *string { return &l.ArrowBgColor }},
	{"arrow_hover_bg_color", "#000000", func(l *Layout) *string { return &l.ArrowHoverBgColor }},
	{"arrow_icon_color", "#ffffff", func(l *Layout) *string { return &l.ArrowIconColor }},
	{"pagination_dot_color", "#cfcfcf", func(l *Layout) *string { return &l.PaginationDotColor }},
	{"pagination_active_dot_color", "#111111", func(l *Layout) *string { return &l.PaginationActiveDotColor }},
}

// Sanitized clamps numbers, normalises colours and resets unknown thumbnail
// heights to auto.
func (l Layout) Sanitized() Layout {
	out := l
	for _, f := range layoutInts {
		p := f.ptr(&out)
		*p = clampInt(*p, f.lo, f.hi)
	}
	for _, f := range layoutColors {
		p := f.ptr(&out)
		*p = NormalizeHexColor(*p, f.def)
	}
	if !slices.Contains(AllowedThumbHeights, out.ThumbHeight) {
		out.ThumbHeight = 0
	}
	return out
}

// Override applies well-formed values found through lookup. Malformed
// numbers are ignored so the existing value stays in place.
func (l Layout) Override(lookup func(name string) (string, bool)) Layout {
	out := l
	for _, f := range layoutInts {
		if raw, ok := lookup(f.name); ok {
			if n, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
				*f.ptr(&out) = n
			}
		}
	}
	for _, f := range layoutColors {
		if raw, ok := lookup(f.name); ok {
			*f.ptr(&out) = NormalizeHexColor(raw, f.def)
		}
	}
	if raw, ok := lookup("thumb_height"); ok {
		raw = strings.TrimSpace(raw)
		if raw == "auto" {
			out.ThumbHeight = 0
		} else if n, err := strconv.Atoi(raw); err == nil {
			out.ThumbHeight = n
		}
	}
	if raw, ok := lookup("center_on_click"); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			out.CenterOnClick = b
		}
	}
	return out
}

// NormalizeHexColor returns "#rrggbb" for a 3 or 6 digit hex colour, with or
// without a leading '#'. Anything else yields fallback.
func NormalizeHexColor(s, fallback string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	for _, r := range s {
		if !isHexDigit(r) {
			return fallback
		}
	}
	switch len(s) {
	case 6:
		return "#" + strings.ToLower(s)
	case 3:
		s = strings.ToLower(s)
		return "#" + string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	default:
		return fallback
	}
}

func isHexDigit(r rune) bool {
	return ('0' <= r && r <= '9') || ('a' <= r && r <= 'f') || ('A' <= r && r <= 'F')
}
