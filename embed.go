package blog

import "embed"

// stylesheetFile is the output path of the site stylesheet, relative to the
// site root.
const stylesheetFile = "assets/style.css"

// EmbeddedAssets contains the default stylesheet shipped with the binary.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS

func defaultStylesheet() []byte {
	b, err := EmbeddedAssets.ReadFile("embedded/style.css")
	if err != nil {
		panic("blog: embedded stylesheet missing: " + err.Error())
	}
	return b
}
