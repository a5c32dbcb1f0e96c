/*
Package config loads workerreg settings from YAML or JSON.

# Overview

Files are parsed into a map and read through Config, whose accessors return
a default when a key is missing or holds the wrong type. Load turns a file
into Settings, the typed form consumed by the registry, supervisor and
worker constructors.

# File Format

	registry:
	  mailbox_size: 128
	  metrics: true
	  tracing: false
	  journal: ./workers.db   # "" disables, "memory" keeps it in process
	supervisor:
	  max_workers: 1000
	  shutdown_timeout: 5s
	worker:
	  mailbox_size: 16
	  default_ttl: 10m        # 0 means entries never expire
	  cleanup_interval: 1m

Every key is optional; DefaultSettings supplies the rest.

# Basic Usage

	settings, err := config.Load("workerreg.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	reg, err := workerreg.Start("carts", workerreg.OptionsFromSettings(settings)...)

# Type Coercion

Duration accepts Go duration strings ("30s", "1h30m"), integers and floats
(seconds), and time.Duration values. Int accepts float64 values without a
fractional part, which is how JSON numbers arrive.
*/
package config
