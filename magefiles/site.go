//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Site groups targets that regenerate the publications page.
type Site mg.Namespace

// sitePaths returns the bibliography and page, overridable with
// BIBCITE_SOURCE and BIBCITE_PAGE.
func sitePaths() (src, page string) {
	src = envOr("BIBCITE_SOURCE", "bib/publications.bib")
	page = envOr("BIBCITE_PAGE", "site/index.html")
	return src, page
}

// Inject rewrites the publications list in the site page in place.
func (Site) Inject() error {
	mg.Deps(Build)
	src, page := sitePaths()
	if err := sh.RunV(binPath, "inject", src, "--page", page, "--output", page); err != nil {
		return fmt.Errorf("injecting %s: %w", page, err)
	}
	fmt.Printf("Updated %s from %s\n", page, src)
	return nil
}

// Markdown writes the publications list as site/publications.md.
func (Site) Markdown() error {
	mg.Deps(Build)
	src, _ := sitePaths()
	return sh.RunV(binPath, "render", src, "--format", "markdown", "--output", "site/publications.md")
}

// Watch re-injects the page whenever the bibliography changes.
func (Site) Watch() error {
	mg.Deps(Build)
	src, page := sitePaths()
	return sh.RunV(binPath, "watch", src, "--page", page, "--output", page)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
