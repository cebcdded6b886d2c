package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"lectureOutline/config"
	"lectureOutline/core"
	"lectureOutline/storage"
)

// 批量摘要提示词。每个条目必须带回 chapter_id，结果按 ID 而不是
// 顺序归位，LLM 乱序或漏答时不会张冠李戴。
const batchPromptTemplate = `You are an assistant that converts lecture transcript segments into a short title, a concise summary, a numeric importance score, and short key points.
Input: a JSON array of chapters, each with chapter_id, start, end (seconds) and transcript text.
Output: a JSON array with exactly one object per input chapter, each with fields: chapter_id, title, summary, importance, key_points.
Requirements:
 - title: 3-7 words (no punctuation at the end).
 - summary: 2 sentences maximum, clear and actionable.
 - importance: float between 0.0 and 1.0 (0.0 = not important, 1.0 = essential for exam revision).
 - key_points: array of up to 5 short bullet sentences (max 12 words each).
Return only valid JSON.
Chapters: %s`

const maxKeyPoints = 5

// ChapterSummarizer 章节摘要生成器。实现必须保证可用性：单个章节
// 的失败用默认记录降级，返回的章节数与时间区间总是与输入一致。
// 第二个返回值是用了降级记录的章节数。
type ChapterSummarizer interface {
	Summarize(ctx context.Context, chapters []core.RawChapter) ([]core.Chapter, int)
}

// chatClient 抽出 LLM 调用面，测试里用桩实现替换
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewChapterSummarizer 按配置选择实现：配置了 API 且未强制本地模式
// 时走 LLM，否则用本地的确定性生成器。
func NewChapterSummarizer(cfg *config.Config) ChapterSummarizer {
	if cfg.ForceLocalSummarizer || !cfg.HasValidAPI() {
		if !cfg.ForceLocalSummarizer {
			log.Printf("未配置 LLM API，使用本地摘要生成器")
		}
		return &LocalSummarizer{}
	}
	return NewLLMSummarizer(cfg)
}

// LLMSummarizer 基于 LLM 的摘要生成器，按批并发调用
type LLMSummarizer struct {
	cli           chatClient
	model         string
	batchSize     int
	maxConcurrent int
	maxRetries    int
	timeout       time.Duration
}

func NewLLMSummarizer(cfg *config.Config) *LLMSummarizer {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &LLMSummarizer{
		cli:           openai.NewClientWithConfig(clientConfig),
		model:         cfg.ChatModel,
		batchSize:     cfg.SummaryBatchSize,
		maxConcurrent: cfg.MaxConcurrency,
		maxRetries:    cfg.MaxRetries,
		timeout:       time.Duration(cfg.RequestTimeoutSec) * time.Second,
	}
}

func (s *LLMSummarizer) Summarize(ctx context.Context, chapters []core.RawChapter) ([]core.Chapter, int) {
	if len(chapters) == 0 {
		return nil, 0
	}

	batchSize := s.batchSize
	if batchSize < 1 {
		batchSize = 1
	}
	maxConcurrent := s.maxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	// 全部结果先在内存中收齐，落盘由调用方一次性原子完成
	results := make([]core.Chapter, len(chapters))
	semaphore := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup
	var mu sync.Mutex
	fallbacks := 0

	for start := 0; start < len(chapters); start += batchSize {
		end := start + batchSize
		if end > len(chapters) {
			end = len(chapters)
		}

		wg.Add(1)
		go func(offset int, batch []core.RawChapter) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			summaries, err := s.summarizeBatch(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			for i, ch := range batch {
				cause := err
				if cause == nil {
					if sum, ok := summaries[ch.ChapterID]; ok {
						results[offset+i] = applySummary(ch, sum)
						continue
					}
					cause = fmt.Errorf("batch response missing chapter %d", ch.ChapterID)
				}
				serr := &core.SummarizationError{ChapterID: ch.ChapterID, Err: cause}
				log.Printf("摘要降级 (%.1f-%.1f 秒): %v", ch.Start, ch.End, serr)
				results[offset+i] = FallbackChapter(ch)
				fallbacks++
			}
		}(start, chapters[start:end])
	}

	wg.Wait()
	log.Printf("摘要生成完成: %d 个章节, 其中 %d 个使用降级记录", len(results), fallbacks)
	return results, fallbacks
}

// summarizeBatch 调一次 LLM 处理一批章节，带超时与有限次退避重试。
// 返回 chapter_id -> 摘要 的映射；无法按章节拆解的响应整体算失败。
func (s *LLMSummarizer) summarizeBatch(ctx context.Context, batch []core.RawChapter) (map[int]chapterSummary, error) {
	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("encode batch: %w", err)
	}
	prompt := fmt.Sprintf(batchPromptTemplate, payload)

	var lastErr error
	backoff := time.Second
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
				backoff *= 2
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		resp, err := s.cli.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.3,
		})
		cancel()
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("empty completion response")
			continue
		}

		summaries, err := parseBatchResponse(resp.Choices[0].Message.Content)
		if err != nil {
			lastErr = err
			continue
		}
		return summaries, nil
	}
	return nil, lastErr
}

// chapterSummary LLM 返回的单章摘要字段
type chapterSummary struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Importance float64  `json:"importance"`
	KeyPoints  []string `json:"key_points"`
}

// parseBatchResponse 解析批量响应：剥掉 markdown 代码块围栏，要求
// 每个条目携带 chapter_id 与全部四个摘要字段。
func parseBatchResponse(content string) (map[int]chapterSummary, error) {
	text := stripCodeFence(content)

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(text), &entries); err != nil {
		return nil, fmt.Errorf("parse batch response: %w", err)
	}

	summaries := make(map[int]chapterSummary, len(entries))
	for _, raw := range entries {
		id, sum, err := parseSummaryEntry(raw)
		if err != nil {
			// 单个坏条目不污染其余条目，对应章节自行降级
			log.Printf("忽略无法解析的摘要条目: %v", err)
			continue
		}
		if _, exists := summaries[id]; !exists {
			summaries[id] = sum
		}
	}
	return summaries, nil
}

func parseSummaryEntry(raw json.RawMessage) (int, chapterSummary, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return 0, chapterSummary{}, fmt.Errorf("entry is not an object: %w", err)
	}
	for _, required := range []string{"chapter_id", "title", "summary", "importance", "key_points"} {
		if _, ok := fields[required]; !ok {
			return 0, chapterSummary{}, fmt.Errorf("entry missing field %q", required)
		}
	}

	var entry struct {
		ChapterID int `json:"chapter_id"`
		chapterSummary
	}
	if err := json.Unmarshal(raw, &entry); err != nil {
		return 0, chapterSummary{}, fmt.Errorf("decode entry: %w", err)
	}

	sum := entry.chapterSummary
	sum.Importance = clampImportance(sum.Importance)
	if len(sum.KeyPoints) > maxKeyPoints {
		sum.KeyPoints = sum.KeyPoints[:maxKeyPoints]
	}
	if sum.KeyPoints == nil {
		sum.KeyPoints = []string{}
	}
	return entry.ChapterID, sum, nil
}

// stripCodeFence 剥掉 LLM 喜欢加的 ```json ... ``` 围栏
func stripCodeFence(content string) string {
	text := strings.TrimSpace(content)
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
	} else if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[idx+len("```"):]
	} else {
		return text
	}
	if idx := strings.Index(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func clampImportance(v float64) float64 {
	if v != v { // NaN
		return 0.0
	}
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// applySummary 把摘要字段并入章节，时间区间与文本原样保留
func applySummary(ch core.RawChapter, sum chapterSummary) core.Chapter {
	return core.Chapter{
		ChapterID:  ch.ChapterID,
		Start:      ch.Start,
		End:        ch.End,
		Title:      sum.Title,
		Summary:    sum.Summary,
		Importance: sum.Importance,
		KeyPoints:  sum.KeyPoints,
		Text:       ch.Text,
	}
}

// FallbackChapter 摘要失败时的默认记录：标题来自时间区间，
// 摘要为空，重要性 0.0，没有要点
func FallbackChapter(ch core.RawChapter) core.Chapter {
	return core.Chapter{
		ChapterID:  ch.ChapterID,
		Start:      ch.Start,
		End:        ch.End,
		Title:      fmt.Sprintf("Chapter %d (%s - %s)", ch.ChapterID+1, storage.FormatClock(ch.Start), storage.FormatClock(ch.End)),
		Summary:    "",
		Importance: 0.0,
		KeyPoints:  []string{},
		Text:       ch.Text,
	}
}
