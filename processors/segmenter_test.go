package processors

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectureOutline/config"
	"lectureOutline/core"
)

// twoTopicLecture 前半段与后半段词汇完全不同的合成讲座
func twoTopicLecture() []core.Segment {
	segments := make([]core.Segment, 8)
	for i := 0; i < 8; i++ {
		text := "calculus derivative gradient"
		if i >= 4 {
			text = "biology cell membrane"
		}
		segments[i] = core.Segment{
			ID:    i,
			Start: float64(i) * 30,
			End:   float64(i+1) * 30,
			Text:  text,
		}
	}
	return segments
}

func testSegmenter(threshold float64) *TopicSegmenter {
	cfg := config.DefaultConfig()
	cfg.SimilarityThreshold = threshold
	return NewTopicSegmenter(cfg, NewHashEmbedder())
}

func TestTopicSegmenterSplitsTopics(t *testing.T) {
	segments := twoTopicLecture()
	ts := testSegmenter(0.8)

	chapters, err := ts.Segment(context.Background(), segments)
	require.NoError(t, err)
	require.Greater(t, len(chapters), 1, "expected at least one topic boundary")

	// 覆盖性: 连续、不重叠、覆盖 [0, 240]
	assert.Equal(t, 0.0, chapters[0].Start)
	for i := 0; i+1 < len(chapters); i++ {
		assert.Equal(t, chapters[i].End, chapters[i+1].Start)
	}
	assert.Equal(t, 240.0, chapters[len(chapters)-1].End)

	// 不重不漏
	assert.Equal(t, joinSegmentTexts(segments), joinChapterTexts(chapters))
}

func TestTopicSegmenterSingleTopicSingleChapter(t *testing.T) {
	segments := make([]core.Segment, 6)
	for i := range segments {
		segments[i] = core.Segment{
			ID:    i,
			Start: float64(i) * 30,
			End:   float64(i+1) * 30,
			Text:  "calculus derivative gradient",
		}
	}

	chapters, err := testSegmenter(0.8).Segment(context.Background(), segments)
	require.NoError(t, err)
	require.Len(t, chapters, 1)
	assert.Equal(t, 0.0, chapters[0].Start)
	assert.Equal(t, 180.0, chapters[0].End)
}

func TestTopicSegmenterNoSegments(t *testing.T) {
	chapters, err := testSegmenter(0.72).Segment(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, chapters)
}

// 相同输入与配置下两次运行的序列化结果逐字节一致
func TestTopicSegmenterIdempotent(t *testing.T) {
	segments := twoTopicLecture()
	ts := testSegmenter(0.72)

	first, err := ts.Segment(context.Background(), segments)
	require.NoError(t, err)
	second, err := ts.Segment(context.Background(), segments)
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestTopicSegmenterInvalidWindowConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.WindowOverlap = cfg.WindowSize // 步长为零
	ts := NewTopicSegmenter(cfg, NewHashEmbedder())

	_, err := ts.Segment(context.Background(), twoTopicLecture())
	require.Error(t, err)
	var confErr *core.ConfigurationError
	assert.ErrorAs(t, err, &confErr)
}
