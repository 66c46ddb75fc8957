// Package clever implements the Clever Cloud capabilities: three read-only
// tools, a greeting prompt and the documentation index resource.
// file: internal/clever/constants.go
package clever

import "github.com/dkoosis/clevermcp/internal/services"

// ServiceName identifies this service in logs and in the registry.
const ServiceName = "clever"

// Tool names. AllTools lists every tool this service must register.
const (
	ToolGetCleverZones       services.ToolName = "get_clever_zones"
	ToolGetDocURLs           services.ToolName = "get_doc_urls"
	ToolFetchWebpageMarkdown services.ToolName = "fetch_webpage_markdown"
)

// AllTools is the closed set of tool names.
var AllTools = []services.ToolName{ToolGetCleverZones, ToolGetDocURLs, ToolFetchWebpageMarkdown}

// PromptHelloWorld is the only prompt.
const PromptHelloWorld services.PromptName = "hello_world"

// ResourceDocIndex is the only resource. It is also the documentation index URL.
const ResourceDocIndex services.ResourceURI = "https://www.clever-cloud.com/developers/llms.txt"

// MimeMarkdown is the mime type of the documentation resource.
const MimeMarkdown = "text/markdown"

// Endpoint labels for logs and metrics.
const (
	endpointZones    = "zones"
	endpointDocs     = "docs"
	endpointMarkdown = "markdown"
)

// HelloWorldText is the body of the hello_world prompt.
const HelloWorldText = "Clever Cloud!"

var jsonHeaders = map[string]string{"Content-Type": "application/json"}
