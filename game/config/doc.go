// Package config loads named room presets for Wordle Rooms.
//
// A preset is a named (maxRounds, maxPlayers) pair. Three presets are
// built in: classic, party and marathon. Additional presets are read with
// viper from a directory of JSON or YAML files:
//
//	# presets/sprint.yaml
//	name: Sprint
//	description: Quick four-word race
//	max_rounds: 4
//	max_players: 6
//
// The preset id is the file name without its extension unless the file
// sets "id". A file with the same id as a built-in preset replaces it.
// Files that fail validation are skipped with a warning.
//
// Usage:
//
//	presets, err := config.NewManager("presets")
//	p, err := presets.Preset("sprint")
package config
