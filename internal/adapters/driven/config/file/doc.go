// Package file builds domain.Settings from layered sources. Defaults are
// overridden by a config.toml or config.yaml file, then by a .env
// file, then by MEDIAMIND_* variables in the process environment.
package file
