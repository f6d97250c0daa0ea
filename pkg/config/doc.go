// Package config handles configuration management for encap.
// Configuration is layered: embedded defaults, the user configuration
// file, ENCAP_* environment variables and finally values set on the
// command line.
package config
