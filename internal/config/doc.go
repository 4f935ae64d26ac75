// Package config provides the configuration system for coltlink.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Environment Variables   │  ← COLTLINK_*, highest priority
//	├─────────────────────────────┤
//	│  3. Project                 │  ← <project>/.coltlink.toml
//	├─────────────────────────────┤
//	│  2. User Settings           │  ← ~/.config/coltlink/config.toml
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// Settings are read through typed section accessors:
//
//	cfg, err := config.Load(config.WithProjectConfigDir(root))
//	colt := cfg.Colt()
//	editor := cfg.Editor()
//
// A value of the wrong type falls back to its default and is recorded in
// ConfigErrors. SetUserValue writes a single setting back to the user file;
// the COLT security token is persisted this way after authorization.
//
// # Sub-packages
//
//   - loader: TOML file and environment variable loading
package config
