/*
Package config provides typed extraction of inventory settings from
map[string]any, as decoded from YAML or JSON.

# Basic Usage

	cfg := config.New(map[string]any{
	    "name":             "sessions",
	    "compaction_ratio": 4,
	    "metrics":          true,
	})

	name := cfg.String("name", "")            // "sessions"
	ratio := cfg.Int("compaction_ratio", 2)   // 4
	tracing := cfg.Bool("tracing", false)     // false

Accessors return the default when the key is missing or the value has the
wrong type. Int accepts float64 values without a fractional part, since
JSON decodes every number as float64.

# Strict Lookups

The Lookup accessors report whether a key is set and fail on a value of
the wrong type instead of falling back:

	ratio, ok, err := cfg.LookupInt("compaction_ratio")
	if errors.Is(err, config.ErrWrongType) {
	    // compaction_ratio: "3" in YAML is a string, not a number
	}

# Loading

FromFile picks the format from the extension (.yaml, .yml, .json) and
prefixes every error with the file path. Parse, FromYAML, and FromJSON
decode documents already in memory. An empty document is an empty Config.

# Sections

Files describing several inventories nest one block per inventory:

	inventories:
	  sessions:
	    compaction_ratio: 4
	  uploads:
	    metrics: true

	cfg, err := config.FromFile("census.yaml")
	if err != nil {
	    return err
	}
	sessions := cfg.Section("inventories").Section("sessions")

# Thread Safety

Config is safe for concurrent reads. The underlying map is not modified
after creation.
*/
package config
