// Package config loads the service configuration from a YAML file, a
// .env file, and environment variables, in increasing order of
// precedence. Sections delegate defaulting and validation to the
// packages that own them.
package config
