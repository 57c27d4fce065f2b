package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"
)

// MaxRunes 提取文本的长度上限，防止 Token 爆炸
const MaxRunes = 20000

// ErrUnsupportedFormat 不支持的文件格式
var ErrUnsupportedFormat = errors.New("不支持的文件格式，仅支持 .docx, .pdf, .txt, .md, .html")

// Extract 按文件扩展名提取文本，结果截断到 MaxRunes
func Extract(data []byte, filename string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".md":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("文件解析失败: %s 不是 UTF-8 文本", filename)
		}
		text = string(data)
	case ".docx":
		text, err = extractDocx(data)
	case ".pdf":
		text, err = extractPDF(data)
	case ".html", ".htm":
		text, err = extractHTML(data)
	default:
		return "", ErrUnsupportedFormat
	}
	if err != nil {
		return "", fmt.Errorf("文件解析失败: %w", err)
	}

	return Truncate(text, MaxRunes), nil
}

// Truncate 按字符（而非字节）截断
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// extractDocx 按段落提取正文，表格与节属性忽略
func extractDocx(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	if len(paragraphs) == 0 {
		return "", errors.New("docx has no paragraphs")
	}
	return strings.Join(paragraphs, "\n"), nil
}

func extractPDF(data []byte) (text string, err error) {
	// ledongthuc/pdf 遇到损坏文件会 panic
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return string(b), nil
}

func extractHTML(data []byte) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(data), &url.URL{Scheme: "file", Path: "/"})
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(article.TextContent), nil
}
