package slug

import "strings"

// Slug lowercases s, trims it and joins the remaining words with single hyphens.
func Slug(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

// SongID builds the canonical song key "{artist-slug}-{title-slug}".
func SongID(artist, title string) string {
	return Slug(artist) + "-" + Slug(title)
}
