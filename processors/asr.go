package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"sort"
	"strings"

	"lectureOutline/config"
	"lectureOutline/core"
)

// ASRProvider 语音识别服务：音频文件 -> 带时间戳的有序片段序列。
// 识别引擎本身是外部黑盒，这里只负责调用与结果校验。
type ASRProvider interface {
	Transcribe(ctx context.Context, audioPath string) ([]core.Segment, error)
}

// WhisperASR 通过外部 whisper 进程转录音频
type WhisperASR struct {
	Script   string
	Language string
}

func NewWhisperASR(cfg *config.Config) *WhisperASR {
	return &WhisperASR{
		Script:   cfg.WhisperScript,
		Language: cfg.Language,
	}
}

func (w *WhisperASR) Transcribe(ctx context.Context, audioPath string) ([]core.Segment, error) {
	args := []string{w.Script, audioPath}
	if w.Language != "" {
		args = append(args, "--language", w.Language)
	}

	cmd := exec.CommandContext(ctx, "python", args...)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %w", err)
	}

	var raw []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	}
	if err := json.Unmarshal(output, &raw); err != nil {
		return nil, fmt.Errorf("parse whisper output: %w", err)
	}

	segments := make([]core.Segment, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if r.End <= r.Start || text == "" {
			continue
		}
		segments = append(segments, core.Segment{
			Start: r.Start,
			End:   r.End,
			Text:  text,
		})
	}

	// 按开始时间排序后分配单调递增的 ID，ID 此后不再变化
	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})
	for i := range segments {
		segments[i].ID = i
	}

	log.Printf("转录完成: %d 个片段", len(segments))
	return segments, nil
}
