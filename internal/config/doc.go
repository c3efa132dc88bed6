// Package config loads and validates recorder configuration.
//
// Configuration is YAML with ${VAR} environment expansion. Every field
// has a default, so a missing config file is not an error: the recorder
// ships as a zero-flag binary capturing BTC-USD into $HOME/hft-data.
package config
