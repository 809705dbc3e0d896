// Package config loads, validates and watches the RIC configuration file and
// writes starter configuration templates.
package config
