package main

import "github.com/killallgit/transcribe-api/cmd"

//go:generate swag init -g main.go -o docs/swagger --parseDependency --parseInternal

// @title           Transcribe API
// @version         1.0.0
// @description     Speech to text with whisper.cpp models, model download progress and optional LLM enhancement
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/transcribe-api
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
