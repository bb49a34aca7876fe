// Package config loads the bot's settings from the environment, an optional
// .env file and an optional YAML file of scraper overrides.
package config
