// Package config defines the pipeline configuration surface: language
// pair, ranked service lists, cache and context windows, capture and VAD
// settings, and per-stage timeouts. It loads values from config.yml and
// .env files via viper, applies defaults, and validates both structurally
// (struct tags) and semantically (known languages and services).
//
// Configuration changes are all-or-nothing: Merge validates the combined
// result before returning it, so a rejected update leaves the previous
// configuration untouched.
package config
