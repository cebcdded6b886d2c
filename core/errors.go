package core

import "fmt"

// ========== 错误分类 ==========
//
// ConfigurationError / TranscriptionError / EmbeddingError /
// DataIntegrityError 对单个讲座是致命的；SummarizationError 按章节
// 捕获并降级，不会中断整批处理。

// ConfigurationError 配置校验失败，在处理任何音频之前拒绝
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// TranscriptionError 转录失败，该讲座无法继续处理
type TranscriptionError struct {
	Lecture string
	Err     error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for lecture %s: %v", e.Lecture, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// EmbeddingError 嵌入向量生成失败，没有嵌入就无法检测话题边界
type EmbeddingError struct {
	Lecture string
	Err     error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed for lecture %s: %v", e.Lecture, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// SummarizationError 单个章节的摘要生成失败，调用方用默认记录降级
type SummarizationError struct {
	ChapterID int
	Err       error
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed for chapter %d: %v", e.ChapterID, e.Err)
}

func (e *SummarizationError) Unwrap() error { return e.Err }

// DataIntegrityError 已落盘的 JSON 产物损坏（例如之前的部分写入），
// 该讲座处理中止，不尝试自动修复
type DataIntegrityError struct {
	Path string
	Err  error
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("corrupt artifact %s: %v", e.Path, e.Err)
}

func (e *DataIntegrityError) Unwrap() error { return e.Err }
