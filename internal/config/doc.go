// Package config loads the reccaster configuration file.
//
// The file is YAML and describes where to listen for announcements, the
// network timeouts, the reconnect policy, client-level properties and the
// records to upload:
//
//	version: 1
//	listen:
//	    port: 5049
//	timeouts:
//	    connect: 5s
//	    handshake: 10s
//	    send: 10s
//	    keepalive: 0s
//	reconnect:
//	    initial_interval: 500ms
//	    max_interval: 30s
//	properties:
//	    ENGINEER: controls-group
//	records:
//	    - name: EXAMPLE:TEMP
//	      type: ai
//	      alias: LAB:TEMPERATURE
//	      properties:
//	          EGU: degC
//
// Fields left out keep their defaults. Load validates the whole file,
// including the records, so a config that loads can always be uploaded.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/reccaster/config.yaml or $HOME/.config/reccaster/config.yaml
//   - macOS: $HOME/.config/reccaster/config.yaml
//   - Windows: %LOCALAPPDATA%\reccaster\config.yaml
//
// # Thread Safety
//
// Save is serialized by a package mutex and writes atomically through a
// temporary file.
package config
