package export

import (
	"log"
	"mime"
)

// File extensions served by the export endpoints.
const (
	ExtCSV  = ".csv"
	ExtXLSX = ".xlsx"
	ExtPDF  = ".pdf"
)

var fallbackTypes = map[string]string{
	ExtCSV:  "text/csv; charset=utf-8",
	ExtXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	ExtPDF:  "application/pdf",
}

func init() {
	for ext, typ := range fallbackTypes {
		ensureMimeType(ext, typ)
	}
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("export: failed to register MIME type for %s: %v", ext, err)
	}
}

// ContentType returns the MIME type for an export extension.
func ContentType(ext string) string {
	if typ := mime.TypeByExtension(ext); typ != "" {
		return typ
	}
	return fallbackTypes[ext]
}
