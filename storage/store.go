package storage

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"lectureOutline/core"
)

// 每个讲座目录下的产物文件名，格式对外兼容，不能改动
const (
	SegmentsFile    = "segments.json"
	SubtitleFile    = "lecture.srt"
	RawChaptersFile = "chapters_raw.json"
	ChaptersFile    = "chapters.json"
)

// Store 讲座产物的平面文件存储：data_root/<lecture_id>/ 下的 JSON 与 SRT
type Store struct {
	Root string
}

func NewStore(root string) *Store {
	return &Store{Root: root}
}

// LectureDir 返回讲座的产物目录并确保其存在
func (s *Store) LectureDir(lectureID string) (string, error) {
	dir := filepath.Join(s.Root, lectureID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create lecture dir: %w", err)
	}
	return dir, nil
}

// SaveJSON 原子写入 JSON 产物：先写临时文件再重命名，
// 中途失败不会留下半截的最终文件
func SaveJSON(path string, data interface{}) error {
	tmp := path + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		file.Close()
		os.Remove(tmp)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// LoadJSON 读取 JSON 产物，损坏的文件报 DataIntegrityError
func LoadJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &core.DataIntegrityError{Path: path, Err: err}
	}
	return nil
}

// WriteSRT 将片段序列渲染为 SRT 字幕：每个片段一条字幕，编号从 1 开始
func WriteSRT(path string, segments []core.Segment) error {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", FormatSRTTimestamp(seg.Start), FormatSRTTimestamp(seg.End))
		fmt.Fprintf(&b, "%s\n\n", seg.Text)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// FormatSRTTimestamp 秒数格式化为 SRT 时间戳 HH:MM:SS,mmm
func FormatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	millis := int((seconds - float64(total)) * 1000)
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, secs, millis)
}

// FormatClock 秒数格式化为 MM:SS，用于降级章节标题等人类可读场合
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	secs := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// LectureID 由视频路径生成讲座 ID：文件名小写 + 完整路径 MD5 前缀，
// 同名不同路径的视频互不干扰
func LectureID(videoPath string) string {
	cleanPath := filepath.Clean(videoPath)
	baseName := filepath.Base(cleanPath)

	name := strings.TrimSuffix(baseName, filepath.Ext(baseName))
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")

	hash := md5.Sum([]byte(cleanPath))
	hashStr := hex.EncodeToString(hash[:])

	return fmt.Sprintf("%s_%s", name, hashStr[:8])
}
