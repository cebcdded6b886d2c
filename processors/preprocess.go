package processors

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// ExtractAudio 用 ffmpeg 从视频中抽取 16kHz 单声道 PCM 音频，
// 这是 whisper 的标准输入格式。目标文件已存在时直接复用，
// 重复运行流水线不会重复解码。
func ExtractAudio(ctx context.Context, videoPath, audioPath string) error {
	if _, err := os.Stat(audioPath); err == nil {
		log.Printf("音频已存在，跳过抽取: %s", audioPath)
		return nil
	}

	args := []string{
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		audioPath,
	}

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg audio extraction failed: %w (output: %s)", err, truncate(string(output), 400))
	}

	log.Printf("音频抽取完成: %s", audioPath)
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
