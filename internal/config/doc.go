// Package config loads GeoDUA's configuration.
//
// # Overview
//
// Configuration comes from a TOML file plus a few environment variables for
// secrets. Every field has a default, so GeoDUA runs without a config file
// as long as a token is available.
//
// # Resolution Order
//
//  1. If a path is explicitly provided (--config), use it
//  2. Otherwise, use ~/.config/geodua/config.toml
//  3. If the file doesn't exist, start from defaults
//  4. Empty or missing fields take their defaults
//  5. A .env file in the working directory is loaded, then GEODUA_API_URL,
//     GEODUA_TOKEN and GEODUA_AI_API_KEY override the file
//  6. Without GEODUA_TOKEN, the token is read from token_file
//
// # Default Values
//
//   - Config file: ~/.config/geodua/config.toml
//   - API URL: http://localhost:3000
//   - Token file: ~/.config/geodua/token (written by "geodua login")
//   - Data directory: ~/.local/share/geodua (log file and local database)
//   - Log: info, text
//   - Save timeout: 60s
//   - Requests per second: 10
//   - AI provider: gemini (disabled without an API key)
//   - Images: 1600px longest side, JPEG quality 85
//
// # TOML Format
//
//	api_url = "https://geodua.example.org"
//	data_dir = "~/.local/share/geodua"
//	log_level = "debug"
//	log_format = "json"
//	save_timeout = "90s"
//	requests_per_second = 5
//
//	[ai]
//	provider = "openai"
//	model = "gpt-4o-mini"
//	base_url = "https://api.openai.com/v1"
//
//	[images]
//	max_dimension = 1280
//	jpeg_quality = 80
//
// # Path Expansion
//
// token_file and data_dir accept absolute, relative (made absolute) and
// tilde paths.
package config
