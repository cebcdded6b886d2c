package core

// ========== 基础数据结构 ==========

// Segment 转录片段，时间以秒为单位。ID 按开始时间单调递增，
// 整个讲座的片段序列是所有下游文本的唯一来源。
type Segment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Window 滑动窗口。窗口之间相互重叠，仅在分割阶段内部使用，不落盘。
type Window struct {
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	SegmentIDs []int   `json:"segment_ids"`
	Text       string  `json:"text"`
}

// RawChapter 原始章节：时间区间 + 去重后的文本，尚未生成摘要。
// 所有章节的时间区间连续且不重叠，恰好覆盖 [0, 最后片段结束时间]。
type RawChapter struct {
	ChapterID int     `json:"chapter_id"`
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	Text      string  `json:"text"`
}

// Chapter 最终章节：RawChapter 加上 LLM 生成的摘要字段。
// 时间区间与文本原样保留，Importance 始终在 [0.0, 1.0] 内，
// KeyPoints 最多 5 条。
type Chapter struct {
	ChapterID  int      `json:"chapter_id"`
	Start      float64  `json:"start"`
	End        float64  `json:"end"`
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	Importance float64  `json:"importance"`
	KeyPoints  []string `json:"key_points"`
	Text       string   `json:"text"`
}

// Step 流水线中单个步骤的执行记录
type Step struct {
	Name   string `json:"name"`
	Status string `json:"status"` // "completed", "failed", "skipped"
	Error  string `json:"error,omitempty"`
}

// Result 单个讲座的处理结果
type Result struct {
	LectureID     string `json:"lecture_id"`
	OutputDir     string `json:"output_dir"`
	SegmentCount  int    `json:"segment_count"`
	ChapterCount  int    `json:"chapter_count"`
	FallbackCount int    `json:"fallback_count"`
	Steps         []Step `json:"steps"`
}
