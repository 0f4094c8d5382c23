package generation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/harmonia-labs/harmonia/modules/blog"
	"github.com/harmonia-labs/harmonia/modules/settings"
	"github.com/harmonia-labs/harmonia/pkg/broadcast"
	"github.com/harmonia-labs/harmonia/pkg/enhance"
	"github.com/harmonia-labs/harmonia/pkg/logger"
	"github.com/harmonia-labs/harmonia/pkg/stockphoto"
	"github.com/harmonia-labs/harmonia/pkg/storage"
)

const imagesPerPost = 3

// ContentGenerator produces article HTML for a prompt.
type ContentGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ImageSearcher finds stock photos matching a query.
type ImageSearcher interface {
	Search(ctx context.Context, query string, perPage int) ([]stockphoto.Photo, error)
}

// Pipeline turns a keyword from the pool into a published post. Scheduled
// fires and the admin "generate now" button run the same path. Every
// stage degrades instead of aborting the run: a failed AI call falls back
// to template content, failed image search publishes without images, and
// the only hard failures are an empty keyword pool and the final persist.
type Pipeline struct {
	keywords   KeywordRepository
	runs       RunRepository
	posts      *blog.Service
	settings   *settings.Service
	generator  ContentGenerator
	images     ImageSearcher
	mirror     storage.Storage
	events     broadcast.Broadcaster[Event]
	httpClient *http.Client
	log        *slog.Logger
	now        func() time.Time
}

// PipelineOption configures optional collaborators.
type PipelineOption func(*Pipeline)

// WithGenerator wires the AI content backend. Without one every run uses
// template content.
func WithGenerator(g ContentGenerator) PipelineOption {
	return func(p *Pipeline) { p.generator = g }
}

// WithImageSearcher wires the stock photo backend.
func WithImageSearcher(s ImageSearcher) PipelineOption {
	return func(p *Pipeline) { p.images = s }
}

// WithImageMirror copies stock photos into owned storage so published
// posts do not depend on upstream CDN availability.
func WithImageMirror(st storage.Storage) PipelineOption {
	return func(p *Pipeline) { p.mirror = st }
}

// WithEvents sets the progress broadcaster consumed by the admin SSE
// endpoint.
func WithEvents(b broadcast.Broadcaster[Event]) PipelineOption {
	return func(p *Pipeline) { p.events = b }
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(log *slog.Logger) PipelineOption {
	return func(p *Pipeline) {
		if log != nil {
			p.log = log
		}
	}
}

// WithPipelineClock overrides the time source. Tests use this.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

func NewPipeline(keywords KeywordRepository, runs RunRepository, posts *blog.Service, settingsSvc *settings.Service, opts ...PipelineOption) *Pipeline {
	if keywords == nil || runs == nil || posts == nil || settingsSvc == nil {
		panic("generation: keywords, runs, posts and settings are required")
	}
	p := &Pipeline{
		keywords:   keywords,
		runs:       runs,
		posts:      posts,
		settings:   settingsSvc,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        slog.Default(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one generation attempt end to end and records the outcome
// in both the run history and the last-run settings.
func (p *Pipeline) Run(ctx context.Context) (*Run, error) {
	startedAt := p.now()

	keyword, err := PickKeyword(ctx, p.keywords)
	if err != nil {
		p.log.ErrorContext(ctx, "generation run aborted", logger.Error(err))
		if recordErr := p.settings.RecordRun(ctx, "", startedAt, err); recordErr != nil {
			p.log.ErrorContext(ctx, "failed to record run outcome", logger.Error(recordErr))
		}
		p.publish(Event{Stage: StageFailed, Message: "no keyword available", Error: err.Error(), At: startedAt})
		return nil, err
	}

	run := &Run{
		ID:        uuid.New(),
		Keyword:   keyword.Phrase,
		Status:    RunStatusRunning,
		StartedAt: startedAt,
	}
	if err := p.runs.Create(ctx, run); err != nil {
		p.log.ErrorContext(ctx, "failed to create generation run", logger.Error(err))
		return nil, err
	}
	p.publish(Event{RunID: run.ID.String(), Stage: StageStarted, Keyword: keyword.Phrase,
		Message: "generation started", At: startedAt})

	post, runErr := p.generate(ctx, run, keyword)
	return p.finish(ctx, run, keyword, post, runErr)
}

func (p *Pipeline) generate(ctx context.Context, run *Run, keyword *Keyword) (*blog.Post, error) {
	html := p.generateContent(ctx, run, keyword.Phrase)

	title := extractTitle(html)
	if title == "" {
		title = titleForKeyword(keyword.Phrase)
	}

	postSlug, err := p.posts.UniqueSlug(ctx, title)
	if err != nil {
		return nil, fmt.Errorf("derive slug: %w", err)
	}

	html = enhance.InsertQuizCallout(html, keyword.Phrase, postSlug)
	html = enhance.InsertLeadMagnetOffer(html, keyword.Phrase, postSlug)
	html = enhance.InsertAuthoritativeCitation(html)
	p.publish(Event{RunID: run.ID.String(), Stage: StageEnhance, Keyword: keyword.Phrase,
		Message: "content enhanced", At: p.now()})

	images := p.searchImages(ctx, run, keyword.Phrase)
	html, used := enhance.EmbedImages(html, images)

	now := p.now()
	excerpt := extractExcerpt(html)
	meta := enhance.ArticleMeta{
		Title:       title,
		Description: excerpt,
		Slug:        postSlug,
		Keyword:     keyword.Phrase,
		PublishedAt: now,
		UpdatedAt:   now,
	}
	html = enhance.InsertArticleSchema(html, meta, used)

	post := &blog.Post{
		ID:          uuid.New(),
		Slug:        postSlug,
		Title:       title,
		Keyword:     keyword.Phrase,
		HTML:        html,
		Excerpt:     excerpt,
		Images:      used,
		Schema:      enhance.BuildArticleSchema(meta, used),
		Status:      blog.StatusPublished,
		Generated:   true,
		PublishedAt: &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.posts.Repository().Create(ctx, post); err != nil {
		return nil, fmt.Errorf("persist post: %w", err)
	}
	p.publish(Event{RunID: run.ID.String(), Stage: StagePersist, Keyword: keyword.Phrase,
		PostID: post.ID.String(), Message: "post published", At: p.now()})

	if err := p.keywords.MarkUsed(ctx, keyword.ID, now); err != nil {
		p.log.ErrorContext(ctx, "failed to mark keyword used",
			logger.Keyword(keyword.Phrase), logger.Error(err))
	}
	return post, nil
}

// generateContent asks the AI backend for article HTML, degrading to
// template content when the backend is missing or fails.
func (p *Pipeline) generateContent(ctx context.Context, run *Run, keyword string) string {
	if p.generator != nil {
		html, err := p.generator.Generate(ctx, buildPrompt(keyword))
		if err == nil && strings.TrimSpace(html) != "" {
			p.publish(Event{RunID: run.ID.String(), Stage: StageContent, Keyword: keyword,
				Message: "content generated", At: p.now()})
			return html
		}
		p.log.WarnContext(ctx, "AI generation failed, using template content",
			logger.Keyword(keyword), logger.Error(err))
	}

	p.publish(Event{RunID: run.ID.String(), Stage: StageContent, Keyword: keyword,
		Message: "using template content", At: p.now()})
	return fallbackArticle(keyword)
}

// searchImages fetches stock photos for the keyword, optionally mirroring
// them into owned storage. Every failure here downgrades to fewer images.
func (p *Pipeline) searchImages(ctx context.Context, run *Run, keyword string) []enhance.Image {
	if p.images == nil {
		return nil
	}

	photos, err := p.images.Search(ctx, keyword, imagesPerPost)
	if err != nil {
		p.log.WarnContext(ctx, "stock photo search failed",
			logger.Keyword(keyword), logger.Error(err))
		return nil
	}

	images := make([]enhance.Image, 0, len(photos))
	for _, photo := range photos {
		img := enhance.Image{
			URL:          photo.URL,
			Alt:          photo.Alt,
			Photographer: photo.Photographer,
			SourceURL:    photo.SourceURL,
		}
		if p.mirror != nil {
			if mirrored, err := p.mirrorImage(ctx, run.ID, img.URL); err == nil {
				img.URL = mirrored
			} else {
				p.log.WarnContext(ctx, "failed to mirror stock photo", logger.Error(err))
			}
		}
		images = append(images, img)
	}

	p.publish(Event{RunID: run.ID.String(), Stage: StageImages, Keyword: keyword,
		Message: fmt.Sprintf("embedded %d images", len(images)), At: p.now()})
	return images
}

// mirrorImage downloads a stock photo and saves it into owned storage,
// returning the owned URL.
func (p *Pipeline) mirrorImage(ctx context.Context, runID uuid.UUID, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	name := path.Base(strings.SplitN(rawURL, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = uuid.NewString() + ".jpg"
	}
	obj, err := p.mirror.Save(ctx, path.Join("generated", runID.String(), name),
		io.LimitReader(resp.Body, 10<<20), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	return obj.URL, nil
}

// finish records the run outcome everywhere it is surfaced: the run
// history row, the last-run settings, and the progress stream.
func (p *Pipeline) finish(ctx context.Context, run *Run, keyword *Keyword, post *blog.Post, runErr error) (*Run, error) {
	finishedAt := p.now()
	run.FinishedAt = &finishedAt

	if runErr != nil {
		run.Status = RunStatusFailed
		run.Error = runErr.Error()
	} else {
		run.Status = RunStatusSucceeded
		run.PostID = &post.ID
	}

	if err := p.runs.Update(ctx, run); err != nil {
		p.log.ErrorContext(ctx, "failed to update generation run", logger.Error(err))
	}
	if err := p.settings.RecordRun(ctx, keyword.Phrase, finishedAt, runErr); err != nil {
		p.log.ErrorContext(ctx, "failed to record run outcome", logger.Error(err))
	}

	if runErr != nil {
		p.log.ErrorContext(ctx, "generation run failed",
			logger.Keyword(keyword.Phrase), logger.Error(runErr))
		p.publish(Event{RunID: run.ID.String(), Stage: StageFailed, Keyword: keyword.Phrase,
			Message: "generation failed", Error: runErr.Error(), At: finishedAt})
		return run, runErr
	}

	p.log.InfoContext(ctx, "generation run succeeded",
		logger.Keyword(keyword.Phrase), logger.PostID(post.ID))
	p.publish(Event{RunID: run.ID.String(), Stage: StageFinished, Keyword: keyword.Phrase,
		PostID: post.ID.String(), Message: "generation finished", At: finishedAt})
	return run, nil
}

func (p *Pipeline) publish(event Event) {
	if p.events == nil {
		return
	}
	_ = p.events.Broadcast(context.Background(), broadcast.Message[Event]{Data: event})
}

func buildPrompt(keyword string) string {
	return fmt.Sprintf(`Write a blog article in clean HTML (h1 title, h2 section headings, p paragraphs, no html/head/body wrapper) for a relationship advice site. Topic: %q. Around 900 words, warm but practical tone, include a short FAQ section at the end. Mention relevant research where it strengthens the advice.`, keyword)
}

var (
	h1Re  = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	pRe   = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	tagRe = regexp.MustCompile(`<[^>]+>`)
)

// extractTitle pulls the first h1 text out of article HTML.
func extractTitle(html string) string {
	m := h1Re.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
}

// extractExcerpt takes the first paragraph, stripped of markup and
// truncated to a meta-description length.
func extractExcerpt(html string) string {
	m := pRe.FindStringSubmatch(html)
	if m == nil {
		return ""
	}
	text := strings.TrimSpace(tagRe.ReplaceAllString(m[1], ""))
	if len(text) > 200 {
		if cut := strings.LastIndex(text[:200], " "); cut > 0 {
			text = text[:cut]
		} else {
			text = text[:200]
		}
		text += "..."
	}
	return text
}
