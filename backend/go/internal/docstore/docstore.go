// Package docstore 保存用户上传的文档，并为检索工具提供按路径读取的能力。
package docstore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	// ErrUnsupportedKind 表示上传的文件既不是 PDF 也不是支持的图片格式。
	ErrUnsupportedKind = errors.New("unsupported document kind")
	// ErrDocumentNotFound 表示按路径找不到文档。
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidFilename 表示文件名去掉目录后为空。
	ErrInvalidFilename = errors.New("invalid filename")
)

// Kind 是文档的类别，决定检索时使用的加载器。
type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

var kindByExt = map[string]Kind{
	".pdf":  KindPDF,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
}

var mimeByExt = map[string]string{
	".pdf":  "application/pdf",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
}

// Document 描述一个已保存的文档。
type Document struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

// Store 是上传文档的存放位置。同名文件再次保存会覆盖旧内容。
type Store interface {
	// PathFor 返回文件名（已去掉目录）对应的确定性存储路径。
	PathFor(name string) string
	Save(ctx context.Context, filename string, data []byte) (*Document, error)
	Exists(ctx context.Context, path string) bool
	Open(ctx context.Context, path string) ([]byte, error)
}

// BaseName 去掉客户端提供的目录部分，防止写出上传目录。
func BaseName(filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidFilename, filename)
	}
	return name, nil
}

// DetectKind 按扩展名判断类别，并用内容嗅探确认文件与扩展名一致。
func DetectKind(filename string, data []byte) (Kind, string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	kind, ok := kindByExt[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: extension %q", ErrUnsupportedKind, ext)
	}
	want := mimeByExt[ext]
	if mt := mimetype.Detect(data); !mt.Is(want) {
		return "", "", fmt.Errorf("%w: %s content is %s", ErrUnsupportedKind, ext, mt.String())
	}
	return kind, want, nil
}

// KindOf 只按扩展名判断已保存文档的类别。
func KindOf(path string) (Kind, bool) {
	kind, ok := kindByExt[strings.ToLower(filepath.Ext(path))]
	return kind, ok
}

// MIMETypeOf 返回已保存文档按扩展名对应的 MIME 类型。
func MIMETypeOf(path string) string {
	return mimeByExt[strings.ToLower(filepath.Ext(path))]
}

func describe(filename string, data []byte, at func(name string) string) (*Document, error) {
	name, err := BaseName(filename)
	if err != nil {
		return nil, err
	}
	kind, mimeType, err := DetectKind(name, data)
	if err != nil {
		return nil, err
	}
	return &Document{Path: at(name), Name: name, Kind: kind, MIMEType: mimeType, Size: len(data)}, nil
}
