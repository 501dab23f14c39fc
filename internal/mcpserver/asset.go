package mcpserver

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

const (
	maxAssetSize = 5 << 20
	assetDir     = "img"
)

// imageSignatures maps an image extension to the leading bytes its content must have.
var imageSignatures = map[string][]byte{
	".png":  {0x89, 'P', 'N', 'G'},
	".jpg":  {0xFF, 0xD8, 0xFF},
	".jpeg": {0xFF, 0xD8, 0xFF},
	".gif":  []byte("GIF8"),
	".webp": []byte("RIFF"),
}

var unsafeName = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

func (s *Server) addStaticAsset(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.deps.Static == nil {
		return mcp.NewToolResultError("no static directory configured"), nil
	}
	uri, err := req.RequireString("data_uri")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, mimeType, err := parseDataURI(uri)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(data) > maxAssetSize {
		return mcp.NewToolResultError(fmt.Sprintf("asset too large: %d bytes (max %d)", len(data), maxAssetSize)), nil
	}

	name := assetName(req.GetString("filename", ""), mimeType)
	ext := strings.ToLower(path.Ext(name))
	sig, ok := imageSignatures[ext]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unsupported image type %q", ext)), nil
	}
	if !bytes.HasPrefix(data, sig) {
		return mcp.NewToolResultError(fmt.Sprintf("content is not a %s image", ext)), nil
	}

	rel := path.Join(assetDir, name)
	if _, err := s.deps.Static.Read(rel); err == nil {
		rel = path.Join(assetDir, uuid.NewString()+ext)
	}
	if err := s.deps.Static.Write(rel, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("![%s](/static/%s)", strings.TrimSuffix(path.Base(rel), ext), rel)), nil
}

// parseDataURI decodes data:<mime>;base64,<payload>.
func parseDataURI(uri string) ([]byte, string, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, "", fmt.Errorf("expected a data: URI")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, "", fmt.Errorf("malformed data URI")
	}
	mimeType, enc, _ := strings.Cut(meta, ";")
	if enc != "base64" {
		return nil, "", fmt.Errorf("data URI must be base64 encoded")
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode data URI: %w", err)
	}
	return data, mimeType, nil
}

// assetName sanitizes the requested name, falling back to a random one with
// an extension derived from the MIME type.
func assetName(requested, mimeType string) string {
	name := unsafeName.ReplaceAllString(path.Base(requested), "_")
	name = strings.TrimLeft(name, "._")
	if name != "" && path.Ext(name) != "" {
		return name
	}
	ext := ""
	if exts, _ := mime.ExtensionsByType(mimeType); len(exts) > 0 {
		ext = exts[0]
	}
	if mimeType == "image/jpeg" {
		ext = ".jpg"
	}
	if name != "" {
		return name + ext
	}
	return uuid.NewString() + ext
}
