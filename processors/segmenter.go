package processors

import (
	"context"
	"log"

	"lectureOutline/config"
	"lectureOutline/core"
)

// TopicSegmenter 话题分割器：滑动窗口嵌入 + 相邻相似度变化点检测。
// 纯内存计算，相同输入与配置下完全确定、可重复。
type TopicSegmenter struct {
	embedder  EmbeddingProvider
	window    float64
	overlap   float64
	threshold float64
}

func NewTopicSegmenter(cfg *config.Config, embedder EmbeddingProvider) *TopicSegmenter {
	return &TopicSegmenter{
		embedder:  embedder,
		window:    cfg.WindowSize,
		overlap:   cfg.WindowOverlap,
		threshold: cfg.SimilarityThreshold,
	}
}

// Segment 把平铺的转录片段序列切分为话题连贯的原始章节
func (ts *TopicSegmenter) Segment(ctx context.Context, segments []core.Segment) ([]core.RawChapter, error) {
	windows, err := BuildWindows(segments, ts.window, ts.overlap)
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		log.Printf("话题分割: 没有转录片段，输出 0 个章节")
		return nil, nil
	}

	texts := make([]string, len(windows))
	for i, w := range windows {
		texts[i] = w.Text
	}

	embeddings, err := ts.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	boundaries := DetectBoundaries(embeddings, ts.threshold)
	chapters := AssembleChapters(windows, boundaries, segments)

	log.Printf("话题分割完成: %d 个窗口, %d 个边界, %d 个章节 (threshold=%.2f)",
		len(windows), len(boundaries), len(chapters), ts.threshold)
	return chapters, nil
}
