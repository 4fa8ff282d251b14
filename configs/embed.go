// Package configs provides embedded templates and board manifests for pio.
//
// Files are embedded at build time using Go's //go:embed directive, so they
// are available in all distributions (go install, binary releases, Homebrew).
//
// The files are used by:
//   - internal/scaffold → project scaffolding (platformio.ini, lib/readme.txt, .travis.yml)
//   - internal/boards → default board registry (boards/*.yaml)
//
// To modify a template or add a bundled board, edit the files in this
// directory and rebuild.
package configs

import "embed"

// ProjectConfigTemplate is the default project configuration file.
// Created by: `pio init` as platformio.ini in the project directory.
//
//go:embed projectconftpl.ini
var ProjectConfigTemplate string

// LibReadmeTemplate explains the private library directory layout.
// Created by: `pio init` as lib/readme.txt.
//
//go:embed lib-readme.txt
var LibReadmeTemplate string

// CIConfigTemplate is the commented Travis CI starter configuration.
// Created by: `pio init` as .travis.yml.
//
//go:embed travis.yml
var CIConfigTemplate string

// Boards holds the bundled board manifests, one YAML file per board.
// The board registry merges these with any user-supplied manifest
// directories; user manifests override bundled ones by identifier.
//
//go:embed boards
var Boards embed.FS
