package mcp

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/sanonone/tempwalk/pkg/dataset"
	"github.com/sanonone/tempwalk/pkg/walk"
)

// Version is reported to MCP clients.
const Version = "0.1.0"

func NewMCPServer(edges *dataset.EdgeSet, w *walk.Walker) *mcp.Server {
	service := NewService(edges, w)

	s := mcp.NewServer(&mcp.Implementation{
		Name:    "tempwalk",
		Version: Version,
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "sample_walks",
		Description: "Sample batches of temporal walks (contiguous windows of same-day edges with residual times).",
	}, service.SampleWalks)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "describe_dataset",
		Description: "Summarize the loaded edge stream: edge and day counts, time range, histogram, walker settings.",
	}, service.DescribeDataset)

	return s
}
