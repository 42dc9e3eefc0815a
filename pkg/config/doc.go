// Package config loads gitdot's optional TOML configuration.
//
// A config file holds the settings that are tedious to repeat on the command
// line: node and edge styles, label specs with their variables, the cache
// backend and the viewer address.
//
//	[style]
//	cnode = '[label="{label}", color="bisque"]'
//	align = "day"
//
//	[log]
//	label = "%h|@CHID@"
//
//	[[log.variables]]
//	name = "@CHID@"
//	pattern = 'Change-Id: (\w+)'
//
//	[cache]
//	redis_url = "$GITDOT_REDIS"
//	ttl = "24h"
//
// Files are searched with [Find] and read with [Load]. Flags given on the
// command line always win over file values.
package config
