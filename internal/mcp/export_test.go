package mcp

// JSONResult exposes jsonResult to the external mcp_test package.
var JSONResult = jsonResult
