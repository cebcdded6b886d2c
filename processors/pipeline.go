package processors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"lectureOutline/config"
	"lectureOutline/core"
	"lectureOutline/storage"
)

// Pipeline 单个讲座的端到端处理：抽音频 -> 转录 -> 话题分割 -> 摘要。
// 各阶段严格串行，讲座之间相互独立，可以并行跑多个 Pipeline 实例。
type Pipeline struct {
	cfg        *config.Config
	store      *storage.Store
	asr        ASRProvider
	segmenter  *TopicSegmenter
	summarizer ChapterSummarizer
}

func NewPipeline(cfg *config.Config) *Pipeline {
	var embedder EmbeddingProvider
	if cfg.HasValidAPI() {
		embedder = NewOpenAIEmbedder(cfg)
	} else {
		log.Printf("未配置嵌入 API，使用本地哈希向量化（仅适合离线试用）")
		embedder = NewHashEmbedder()
	}

	return &Pipeline{
		cfg:        cfg,
		store:      storage.NewStore(cfg.DataRoot),
		asr:        NewWhisperASR(cfg),
		segmenter:  NewTopicSegmenter(cfg, embedder),
		summarizer: NewChapterSummarizer(cfg),
	}
}

// ProcessVideo 处理一个讲座视频，产物写入 data_root/<lecture_id>/。
// 致命错误（转录、嵌入、产物损坏）中止本讲座并带出讲座 ID 与阶段，
// 摘要失败只降级不中止。所有最终产物都是原子写入，失败不会留下
// 半截文件。
func (p *Pipeline) ProcessVideo(ctx context.Context, videoPath string) (*core.Result, error) {
	lectureID := storage.LectureID(videoPath)
	dir, err := p.store.LectureDir(lectureID)
	if err != nil {
		return nil, err
	}

	result := &core.Result{LectureID: lectureID, OutputDir: dir}
	log.Printf("开始处理讲座 %s (%s)", lectureID, videoPath)

	// 阶段 1: 抽取音频
	audioPath := filepath.Join(dir, "audio.wav")
	if err := ExtractAudio(ctx, videoPath, audioPath); err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "extract_audio", Status: "failed", Error: err.Error()})
		return result, &core.TranscriptionError{Lecture: lectureID, Err: err}
	}
	result.Steps = append(result.Steps, core.Step{Name: "extract_audio", Status: "completed"})

	// 阶段 2: 转录；已有 segments.json 时直接复用
	segments, step, err := p.loadOrTranscribe(ctx, dir, audioPath, lectureID)
	if err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "transcribe", Status: "failed", Error: err.Error()})
		return result, err
	}
	result.Steps = append(result.Steps, step)
	result.SegmentCount = len(segments)

	// 阶段 3: 话题分割
	chapters, err := p.segmenter.Segment(ctx, segments)
	if err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "segment", Status: "failed", Error: err.Error()})
		var confErr *core.ConfigurationError
		if errors.As(err, &confErr) {
			return result, err
		}
		return result, &core.EmbeddingError{Lecture: lectureID, Err: err}
	}
	if err := storage.SaveJSON(filepath.Join(dir, storage.RawChaptersFile), chapters); err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "segment", Status: "failed", Error: err.Error()})
		return result, fmt.Errorf("save raw chapters for lecture %s: %w", lectureID, err)
	}
	result.Steps = append(result.Steps, core.Step{Name: "segment", Status: "completed"})

	// 阶段 4: 摘要。结果全部在内存收齐（含降级记录）后一次性落盘，
	// 中途取消不会产生部分写入的最终文件。
	final, fallbacks := p.summarizer.Summarize(ctx, chapters)
	if err := ctx.Err(); err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "summarize", Status: "failed", Error: err.Error()})
		return result, err
	}
	if err := storage.SaveJSON(filepath.Join(dir, storage.ChaptersFile), final); err != nil {
		result.Steps = append(result.Steps, core.Step{Name: "summarize", Status: "failed", Error: err.Error()})
		return result, fmt.Errorf("save chapters for lecture %s: %w", lectureID, err)
	}
	result.Steps = append(result.Steps, core.Step{Name: "summarize", Status: "completed"})
	result.ChapterCount = len(final)
	result.FallbackCount = fallbacks

	log.Printf("讲座 %s 处理完成: %d 个片段, %d 个章节, %d 个摘要降级",
		lectureID, result.SegmentCount, result.ChapterCount, result.FallbackCount)
	return result, nil
}

// loadOrTranscribe 复用已有的 segments.json，否则转录并写出
// segments.json 与 lecture.srt
func (p *Pipeline) loadOrTranscribe(ctx context.Context, dir, audioPath, lectureID string) ([]core.Segment, core.Step, error) {
	segmentsPath := filepath.Join(dir, storage.SegmentsFile)

	if _, err := os.Stat(segmentsPath); err == nil {
		var segments []core.Segment
		if err := storage.LoadJSON(segmentsPath, &segments); err != nil {
			return nil, core.Step{}, err
		}
		log.Printf("复用已有转录: %s (%d 个片段)", segmentsPath, len(segments))
		return segments, core.Step{Name: "transcribe", Status: "skipped"}, nil
	}

	segments, err := p.asr.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, core.Step{}, &core.TranscriptionError{Lecture: lectureID, Err: err}
	}

	if err := storage.SaveJSON(segmentsPath, segments); err != nil {
		return nil, core.Step{}, fmt.Errorf("save segments for lecture %s: %w", lectureID, err)
	}
	if err := storage.WriteSRT(filepath.Join(dir, storage.SubtitleFile), segments); err != nil {
		return nil, core.Step{}, fmt.Errorf("write subtitles for lecture %s: %w", lectureID, err)
	}
	return segments, core.Step{Name: "transcribe", Status: "completed"}, nil
}

// SummarizeFile 对已有的 chapters_raw.json 重新生成摘要，
// 供 CLI 的 summarize 子命令使用
func (p *Pipeline) SummarizeFile(ctx context.Context, rawPath, outPath string) (*core.Result, error) {
	var chapters []core.RawChapter
	if err := storage.LoadJSON(rawPath, &chapters); err != nil {
		return nil, err
	}

	final, fallbacks := p.summarizer.Summarize(ctx, chapters)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(rawPath), storage.ChaptersFile)
	}
	if err := storage.SaveJSON(outPath, final); err != nil {
		return nil, fmt.Errorf("save chapters: %w", err)
	}

	result := &core.Result{
		OutputDir:     filepath.Dir(outPath),
		ChapterCount:  len(final),
		FallbackCount: fallbacks,
		Steps:         []core.Step{{Name: "summarize", Status: "completed"}},
	}
	return result, nil
}
