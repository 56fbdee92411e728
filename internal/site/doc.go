// Package site runs a full build: it turns the content directory into the
// output site through a fixed sequence of named stages, recording each
// stage's duration and result in a Report.
//
// A Builder may be reused across builds. Every Build starts from a fresh
// template cache and shares nothing with earlier builds.
package site
