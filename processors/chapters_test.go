package processors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lectureOutline/core"
)

func joinSegmentTexts(segments []core.Segment) string {
	parts := make([]string, len(segments))
	for i, seg := range segments {
		parts[i] = seg.Text
	}
	return strings.Join(parts, " ")
}

func joinChapterTexts(chapters []core.RawChapter) string {
	var parts []string
	for _, ch := range chapters {
		if ch.Text != "" {
			parts = append(parts, ch.Text)
		}
	}
	return strings.Join(parts, " ")
}

// 规格场景: 10 个片段覆盖 [0,300] 秒，窗口 60s/重叠 30s，
// 边界 {2,5} → 恰好 3 个章节 [0,90) [90,180) [180,300]
func TestAssembleChaptersReferenceScenario(t *testing.T) {
	segments := makeSegments(10, 30)
	windows, err := BuildWindows(segments, 60, 30)
	require.NoError(t, err)
	require.Len(t, windows, 10)

	chapters := AssembleChapters(windows, []int{2, 5}, segments)
	require.Len(t, chapters, 3)

	assert.Equal(t, 0.0, chapters[0].Start)
	assert.Equal(t, 90.0, chapters[0].End)
	assert.Equal(t, 90.0, chapters[1].Start)
	assert.Equal(t, 180.0, chapters[1].End)
	assert.Equal(t, 180.0, chapters[2].Start)
	assert.Equal(t, 300.0, chapters[2].End)

	for i, ch := range chapters {
		assert.Equal(t, i, ch.ChapterID)
	}

	// 10 个片段合计恰好出现一次，顺序不变
	assert.Equal(t, joinSegmentTexts(segments), joinChapterTexts(chapters))
}

// 章节区间连续、不重叠、恰好覆盖 [0, 最后片段结束]
func TestAssembleChaptersCoverage(t *testing.T) {
	segments := makeSegments(14, 17.5)
	windows, err := BuildWindows(segments, 45, 15)
	require.NoError(t, err)

	chapters := AssembleChapters(windows, []int{0, 2, 4}, segments)
	require.NotEmpty(t, chapters)

	assert.Equal(t, 0.0, chapters[0].Start)
	for i := 0; i+1 < len(chapters); i++ {
		assert.Equal(t, chapters[i].End, chapters[i+1].Start, "chapters %d/%d must be contiguous", i, i+1)
		assert.Less(t, chapters[i].Start, chapters[i].End)
	}
	assert.Equal(t, segments[len(segments)-1].End, chapters[len(chapters)-1].End)
}

// 窗口重叠导致片段出现在多个章节的窗口集合里，文本仍只输出一次
func TestAssembleChaptersNoDuplicationNoLoss(t *testing.T) {
	segments := makeSegments(20, 11)
	windows, err := BuildWindows(segments, 30, 20) // 大量重叠
	require.NoError(t, err)

	for _, boundaries := range [][]int{nil, {0}, {3, 7}, {0, 1, 2, 3}} {
		chapters := AssembleChapters(windows, boundaries, segments)
		assert.Equal(t, joinSegmentTexts(segments), joinChapterTexts(chapters), "boundaries %v", boundaries)
	}
}

// 所有片段都已在前一章输出过的章节仍然输出，只是文本为空
func TestAssembleChaptersEmptyChapterKept(t *testing.T) {
	segments := []core.Segment{
		{ID: 0, Start: 0, End: 10, Text: "one"},
		{ID: 1, Start: 10, End: 20, Text: "two"},
	}
	windows := []core.Window{
		{Start: 0, End: 15, SegmentIDs: []int{0, 1}, Text: "one two"},
		{Start: 10, End: 20, SegmentIDs: []int{0, 1}, Text: "one two"},
	}

	chapters := AssembleChapters(windows, []int{0}, segments)
	require.Len(t, chapters, 2)
	assert.Equal(t, "one two", chapters[0].Text)
	assert.Equal(t, "", chapters[1].Text)
	assert.Equal(t, 10.0, chapters[1].Start)
	assert.Equal(t, 20.0, chapters[1].End)
}

// 非法与乱序的边界被忽略
func TestAssembleChaptersIgnoresInvalidBoundaries(t *testing.T) {
	segments := makeSegments(4, 30)
	windows, err := BuildWindows(segments, 60, 30)
	require.NoError(t, err)

	chapters := AssembleChapters(windows, []int{7, 99, -3}, segments)
	require.Len(t, chapters, 1)
	assert.Equal(t, 0.0, chapters[0].Start)
	assert.Equal(t, 120.0, chapters[0].End)
}

func TestAssembleChaptersIdempotent(t *testing.T) {
	segments := makeSegments(12, 25)
	windows, err := BuildWindows(segments, 60, 30)
	require.NoError(t, err)

	first := AssembleChapters(windows, []int{1, 4}, segments)
	second := AssembleChapters(windows, []int{1, 4}, segments)
	assert.Equal(t, first, second)
}

func TestAssembleChaptersNoWindows(t *testing.T) {
	assert.Nil(t, AssembleChapters(nil, nil, nil))
}
