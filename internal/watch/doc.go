// Package watch rebuilds the site when its sources change.
//
// A Controller coalesces bursts of filesystem events into a single build
// after a quiet period and never runs two builds at once. Fires that land
// while a build is running are dropped.
package watch
