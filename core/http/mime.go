package http

import "strings"

// DefaultMIMEType is returned for unknown file extensions.
const DefaultMIMEType = "application/octet-stream"

// mimeTypes is a static extension -> content-type table.
var mimeTypes = map[string]string{
	".html": "text/html",
	".htm":  "text/html",
	".css":  "text/css",
	".js":   "application/javascript",
	".mjs":  "application/javascript",
	".json": "application/json",
	".xml":  "application/xml",
	".txt":  "text/plain",
	".csv":  "text/csv",
	".md":   "text/markdown",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".svg":  "image/svg+xml",
	".ico":  "image/vnd.microsoft.icon",
	".bmp":  "image/bmp",
	".webp": "image/webp",
	".woff": "font/woff",
	".woff2": "font/woff2",
	".ttf":  "font/ttf",
	".otf":  "font/otf",
	".pdf":  "application/pdf",
	".zip":  "application/zip",
	".gz":   "application/gzip",
	".tar":  "application/x-tar",
	".wasm": "application/wasm",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".bin":  "application/octet-stream",
}

// MIMETypeFor looks up the content type for a filename by extension,
// falling back to DefaultMIMEType.
func MIMETypeFor(filename string) string {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return DefaultMIMEType
	}
	if t, ok := mimeTypes[strings.ToLower(filename[idx:])]; ok {
		return t
	}
	return DefaultMIMEType
}
