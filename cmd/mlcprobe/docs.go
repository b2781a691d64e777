package main

// General API documentation for swaggo. The generated description of the mock
// server lives in internal/httpapi/docs and is served with -tags=swagger.
//
// @title           mlcprobe mock completions API
// @version         1.0
// @description     Local OpenAI-compatible completions endpoint used by the mlcprobe smoke test.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
