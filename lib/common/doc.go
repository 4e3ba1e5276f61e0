// Package common holds the configuration and logging setup shared by the
// roster command line tools.
//
// Config carries every setting the cli reads from flags, environment and .env
// files. InitLoggers installs a dragonboat compatible logger factory so that
// all packages logging via logger.GetLogger share one format:
//
//	2025/01/01 12:00:00 WARN  | store      | message
package common
