// Package main provides the entry point of salon-cms, the content service of a beauty
// salon storefront. It serves a session protected admin API to manage services, gallery
// images, reviews and site settings, a public API for the storefront and, optionally,
// the hosted backend the admin state is synced to.
package main
