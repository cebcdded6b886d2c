package processors

import (
	"fmt"
	"math"
	"strings"

	"lectureOutline/core"
)

// BuildWindows 将转录片段划分为固定时长的重叠滑动窗口。
// 第 k 个窗口覆盖 [k*(W-O), k*(W-O)+W]，末尾裁剪到最后片段的结束时间。
// 片段的时间区间与窗口有任何重叠即归入该窗口，文本整段带入并记录片段 ID。
// 没有命中任何片段的窗口也保留，保证章节区间能连续覆盖整个讲座。
func BuildWindows(segments []core.Segment, windowSize, overlap float64) ([]core.Window, error) {
	step := windowSize - overlap
	if windowSize <= 0 || overlap < 0 || step <= 0 {
		return nil, &core.ConfigurationError{
			Reason: fmt.Sprintf("invalid window config: size=%.1fs overlap=%.1fs (stride must be positive)", windowSize, overlap),
		}
	}

	if len(segments) == 0 {
		return nil, nil
	}
	totalDuration := segments[len(segments)-1].End

	var windows []core.Window
	for start := 0.0; start < totalDuration; start += step {
		end := math.Min(start+windowSize, totalDuration)

		window := core.Window{Start: start, End: end}
		var parts []string
		for _, seg := range segments {
			// 片段与窗口相交：开始早于窗口结束且结束晚于窗口开始
			if seg.Start < end && seg.End > start {
				window.SegmentIDs = append(window.SegmentIDs, seg.ID)
				parts = append(parts, seg.Text)
			}
		}
		window.Text = strings.Join(parts, " ")
		windows = append(windows, window)
	}

	return windows, nil
}
