package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"

	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/document"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/engine"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/knowledge"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/metrics"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/trend"
)

// 标题生成时参考摘要的长度
const summaryRunes = 1000

// TrendSource 热点来源，由 resolver.Resolver 实现
type TrendSource interface {
	GetTrends(ctx context.Context) trend.Set
	Cached() trend.Set
}

// Generator 文本生成能力，由 engine.Engine 实现
type Generator interface {
	GenerateTitles(ctx context.Context, req engine.TitleRequest) (string, error)
	GenerateContent(ctx context.Context, req engine.ContentRequest) (string, error)
}

type ConfigReply struct {
	Styles []string `json:"styles"`
	Trends []string `json:"trends"`
	Models []string `json:"models"`
}

type TitlesReply struct {
	Titles string `json:"titles"`
}

type ContentReply struct {
	Content string `json:"content"`
}

// Upload 上传的参考文件
type Upload struct {
	Filename string
	Data     []byte
}

type TitlesForm struct {
	APIKey     string
	Subject    string
	StyleKey   string
	ModelKey   string
	Creativity float32
	File       *Upload
}

type ContentForm struct {
	APIKey      string
	Title       string
	ContentType string
	StyleKey    string
	ModelKey    string
	VideoLength float64
	Creativity  float32
	File        *Upload
}

type WriterService struct {
	trends    TrendSource
	gen       Generator
	kb        *knowledge.Base
	metrics   *metrics.Metrics
	maxUpload int64
	log       *log.Helper
}

func NewWriterService(trends TrendSource, gen Generator, kb *knowledge.Base, m *metrics.Metrics, logger log.Logger) *WriterService {
	return &WriterService{
		trends:    trends,
		gen:       gen,
		kb:        kb,
		metrics:   m,
		maxUpload: 20 << 20,
		log:       log.NewHelper(logger),
	}
}

// SetMaxUpload 设置上传大小上限（字节）
func (s *WriterService) SetMaxUpload(n int64) {
	if n > 0 {
		s.maxUpload = n
	}
}

// Config 返回风格、热点和模型列表，实时热点为空时使用静态数据兜底
func (s *WriterService) Config(ctx context.Context) *ConfigReply {
	s.log.Info("正在获取热点数据...")
	trends := s.trends.GetTrends(ctx)
	if len(trends) > 0 {
		s.log.Infof("爬虫成功，获取到 %d 条热点", len(trends))
	} else {
		s.log.Warn("爬虫未获取到数据，使用静态数据兜底")
		s.metrics.StaticFallback()
		trends = s.kb.FallbackTrends.Clone()
	}

	return &ConfigReply{
		Styles: s.kb.StyleKeys(),
		Trends: trends,
		Models: s.kb.ModelNames(),
	}
}

// Titles 生成标题，热点取最近一次缓存（不论是否过期），没有则用静态数据
func (s *WriterService) Titles(ctx context.Context, form *TitlesForm) (*TitlesReply, error) {
	s.log.Infof("[请求] 生成标题: 主题=%s", form.Subject)

	var summary string
	if form.File != nil {
		text, err := s.extract(form.File)
		if err != nil {
			return nil, err
		}
		summary = document.Truncate(text, summaryRunes)
		s.log.Infof("文件已解析: %s, 提取摘要长度: %d", form.File.Filename, len([]rune(summary)))
	}

	trends := s.trends.Cached()
	if len(trends) == 0 {
		trends = s.kb.FallbackTrends
	}

	titles, err := s.gen.GenerateTitles(ctx, engine.TitleRequest{
		APIKey:           form.APIKey,
		Subject:          form.Subject,
		StyleKey:         form.StyleKey,
		ModelKey:         form.ModelKey,
		Creativity:       form.Creativity,
		Trends:           trends,
		ReferenceSummary: summary,
	})
	if err != nil {
		return nil, s.generationError("生成标题失败", err)
	}
	return &TitlesReply{Titles: titles}, nil
}

// Content 生成正文
func (s *WriterService) Content(ctx context.Context, form *ContentForm) (*ContentReply, error) {
	s.log.Infof("[请求] 生成内容: %s", form.Title)

	var reference string
	if form.File != nil {
		text, err := s.extract(form.File)
		if err != nil {
			return nil, err
		}
		reference = text
		s.log.Infof("RAG文件注入成功，长度: %d", len([]rune(reference)))
	}

	content, err := s.gen.GenerateContent(ctx, engine.ContentRequest{
		APIKey:            form.APIKey,
		Title:             form.Title,
		ContentType:       form.ContentType,
		StyleKey:          form.StyleKey,
		ModelKey:          form.ModelKey,
		VideoLength:       form.VideoLength,
		Creativity:        form.Creativity,
		ReferenceMaterial: reference,
	})
	if err != nil {
		return nil, s.generationError("生成内容失败", err)
	}
	return &ContentReply{Content: content}, nil
}

func (s *WriterService) extract(f *Upload) (string, error) {
	text, err := document.Extract(f.Data, f.Filename)
	if err != nil {
		s.log.Warnf("文件解析失败 [%s]: %v", f.Filename, err)
		return "", kerrors.BadRequest("INVALID_DOCUMENT", err.Error())
	}
	return text, nil
}

func (s *WriterService) generationError(what string, err error) error {
	if errors.Is(err, engine.ErrMissingAPIKey) {
		return kerrors.BadRequest("MISSING_API_KEY", err.Error())
	}
	s.log.Errorf("[严重错误] %s: %v", what, err)
	return kerrors.InternalServer("GENERATION_FAILED", fmt.Sprintf("后端报错: %v", err))
}

// HTTP handlers

func (s *WriterService) GetConfig(ctx khttp.Context) error {
	h := ctx.Middleware(func(c context.Context, _ interface{}) (interface{}, error) {
		return s.Config(c), nil
	})
	out, err := h(ctx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func (s *WriterService) GenerateTitles(ctx khttp.Context) error {
	req := ctx.Request()
	if err := s.parseForm(req); err != nil {
		return err
	}

	form := &TitlesForm{
		APIKey:   req.FormValue("api_key"),
		Subject:  req.FormValue("subject"),
		StyleKey: req.FormValue("style_key"),
		ModelKey: req.FormValue("model_key"),
	}
	if err := required(map[string]string{"subject": form.Subject, "style_key": form.StyleKey, "model_key": form.ModelKey}); err != nil {
		return err
	}
	creativity, err := floatField(req, "creativity", 0.8)
	if err != nil {
		return err
	}
	form.Creativity = float32(creativity)
	if form.File, err = s.readUpload(req); err != nil {
		return err
	}

	h := ctx.Middleware(func(c context.Context, in interface{}) (interface{}, error) {
		return s.Titles(c, in.(*TitlesForm))
	})
	out, err := h(ctx, form)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func (s *WriterService) GenerateContent(ctx khttp.Context) error {
	req := ctx.Request()
	if err := s.parseForm(req); err != nil {
		return err
	}

	form := &ContentForm{
		APIKey:      req.FormValue("api_key"),
		Title:       req.FormValue("title"),
		ContentType: req.FormValue("content_type"),
		StyleKey:    req.FormValue("style_key"),
		ModelKey:    req.FormValue("model_key"),
	}
	if err := required(map[string]string{
		"title":        form.Title,
		"content_type": form.ContentType,
		"style_key":    form.StyleKey,
		"model_key":    form.ModelKey,
	}); err != nil {
		return err
	}
	videoLength, err := floatField(req, "video_length", 1.0)
	if err != nil {
		return err
	}
	creativity, err := floatField(req, "creativity", 0.5)
	if err != nil {
		return err
	}
	form.VideoLength = videoLength
	form.Creativity = float32(creativity)
	if form.File, err = s.readUpload(req); err != nil {
		return err
	}

	h := ctx.Middleware(func(c context.Context, in interface{}) (interface{}, error) {
		return s.Content(c, in.(*ContentForm))
	})
	out, err := h(ctx, form)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, out)
}

func (s *WriterService) parseForm(req *http.Request) error {
	req.Body = http.MaxBytesReader(nil, req.Body, s.maxUpload+1<<20)
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		if err := req.ParseMultipartForm(s.maxUpload); err != nil {
			return kerrors.BadRequest("INVALID_FORM", err.Error())
		}
		return nil
	}
	if err := req.ParseForm(); err != nil {
		return kerrors.BadRequest("INVALID_FORM", err.Error())
	}
	return nil
}

func (s *WriterService) readUpload(req *http.Request) (*Upload, error) {
	f, header, err := req.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, kerrors.BadRequest("INVALID_FILE", err.Error())
	}
	defer f.Close()
	return readMultipart(f, header, s.maxUpload)
}

func readMultipart(f multipart.File, header *multipart.FileHeader, limit int64) (*Upload, error) {
	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, kerrors.BadRequest("INVALID_FILE", err.Error())
	}
	if int64(len(data)) > limit {
		return nil, kerrors.BadRequest("FILE_TOO_LARGE", fmt.Sprintf("file %s exceeds %d bytes", header.Filename, limit))
	}
	return &Upload{Filename: header.Filename, Data: data}, nil
}

func required(fields map[string]string) error {
	var missing []string
	for name, v := range fields {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return kerrors.BadRequest("MISSING_FIELD", "missing required fields: "+strings.Join(missing, ", "))
}

func floatField(req *http.Request, name string, def float64) (float64, error) {
	v := strings.TrimSpace(req.FormValue(name))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, kerrors.BadRequest("INVALID_FIELD", fmt.Sprintf("%s must be a number", name))
	}
	return f, nil
}
