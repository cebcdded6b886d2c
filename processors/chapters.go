package processors

import (
	"sort"
	"strings"

	"lectureOutline/core"
)

// AssembleChapters 按边界把窗口序列切成连续的段，每段合并为一个章节。
// 边界索引 i 表示话题变化发生在窗口 i 与 i+1 之间，因此窗口 i+1 开启
// 新章节。章节区间取 [本段首窗口开始, 下一段首窗口开始)，最后一章
// 结束于最后一个窗口的结束时间，保证区间连续、不重叠、恰好覆盖整个
// 讲座。
//
// 文本重建：窗口互相重叠，同一片段会出现在多个窗口乃至多个章节的
// 窗口集合里。通过在整次装配中传递一个"已输出片段 ID"累加器，每个
// 片段的文本在全部章节拼接中恰好出现一次，且保持原始时间顺序。
// 没有贡献任何新片段的章节仍然输出（文本为空），不被丢弃。
func AssembleChapters(windows []core.Window, boundaries []int, segments []core.Segment) []core.RawChapter {
	if len(windows) == 0 {
		return nil
	}

	segmentByID := make(map[int]core.Segment, len(segments))
	for _, seg := range segments {
		segmentByID[seg.ID] = seg
	}

	// 每段的首窗口索引；非法或乱序的边界直接忽略
	runStarts := []int{0}
	for _, b := range boundaries {
		next := b + 1
		if next <= runStarts[len(runStarts)-1] || next >= len(windows) {
			continue
		}
		runStarts = append(runStarts, next)
	}

	totalEnd := windows[len(windows)-1].End
	emitted := make(map[int]bool, len(segments))

	chapters := make([]core.RawChapter, 0, len(runStarts))
	for i, runStart := range runStarts {
		runEnd := len(windows)
		chapterEnd := totalEnd
		if i+1 < len(runStarts) {
			runEnd = runStarts[i+1]
			chapterEnd = windows[runEnd].Start
		}

		chapters = append(chapters, core.RawChapter{
			ChapterID: i,
			Start:     windows[runStart].Start,
			End:       chapterEnd,
			Text:      reconstructText(windows[runStart:runEnd], segmentByID, emitted),
		})
	}

	return chapters
}

// reconstructText 取本章所有窗口贡献的片段 ID 并集，按 ID 升序输出
// 尚未输出过的片段文本，然后标记为已输出。emitted 在整次装配中共享。
func reconstructText(windows []core.Window, segmentByID map[int]core.Segment, emitted map[int]bool) string {
	idSet := make(map[int]bool)
	for _, w := range windows {
		for _, id := range w.SegmentIDs {
			idSet[id] = true
		}
	}

	ids := make([]int, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var parts []string
	for _, id := range ids {
		if emitted[id] {
			continue
		}
		seg, ok := segmentByID[id]
		if !ok {
			continue
		}
		emitted[id] = true
		parts = append(parts, seg.Text)
	}

	return strings.Join(parts, " ")
}
